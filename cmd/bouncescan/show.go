package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emurenMRz/bounceview/internal/mailbox"
)

func newShowCmd(a *app) *cobra.Command {
	var msgIndex int
	cmd := &cobra.Command{
		Use:   "show --msg N MBOX",
		Short: "Print the parsed headers and results of one message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open mbox: %w", err)
			}
			defer f.Close()

			var raw string
			found := false
			err = mailbox.ReadEach(f, func(id int, msg string) error {
				if id == msgIndex {
					raw, found = msg, true
					return io.EOF
				}
				return nil
			})
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("invalid message index %d", msgIndex)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.handler().Analyze(raw))
		},
	}
	cmd.Flags().IntVar(&msgIndex, "msg", -1, "message index")
	cmd.MarkFlagRequired("msg")
	return cmd
}
