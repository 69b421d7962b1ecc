package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newSuppressedCmd(a *app) *cobra.Command {
	var (
		storePath string
		asJSON    bool
		remove    []string
	)
	cmd := &cobra.Command{
		Use:   "suppressed",
		Short: "List recipients on the suppression list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx, storePath)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("no suppression store configured, use --store")
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(remove) > 0 {
				for _, addr := range remove {
					ok, err := store.Remove(ctx, addr)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintf(out, "%s: not suppressed\n", addr)
						continue
					}
					fmt.Fprintf(out, "%s: removed\n", addr)
				}
				return nil
			}

			entries, err := store.List(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				for _, e := range entries {
					if err := enc.Encode(e); err != nil {
						return err
					}
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RECIPIENT\tTYPE\tSTATUS\tREASON\tHITS\tLAST SEEN")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					e.Recipient, e.EmailType, e.Status, e.Reason, e.Hits, e.LastSeen.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "suppression database (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per entry")
	cmd.Flags().StringSliceVar(&remove, "remove", nil, "remove these recipients from the list")
	return cmd
}
