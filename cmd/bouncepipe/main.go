// Command bouncepipe classifies one message read from stdin. It is meant to
// run as a delivery filter: results are printed as JSON, the message can be
// filed into an mbox per email type, and hard failures can be recorded on
// the suppression list.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/address"
	"github.com/emurenMRz/bounceview/internal/config"
	"github.com/emurenMRz/bounceview/internal/logging"
	"github.com/emurenMRz/bounceview/internal/mailbox"
	"github.com/emurenMRz/bounceview/internal/suppress"
)

const (
	exitOK       = 0
	exitTempFail = 75 // EX_TEMPFAIL
)

// Unclassified is the mailbox for messages that produced no results.
const Unclassified = "unknown"

type output struct {
	EmailType  bounce.EmailType `json:"emailType,omitempty"`
	Mailbox    string           `json:"mailbox,omitempty"`
	Suppressed int              `json:"suppressed,omitempty"`
	Results    []bounce.Result  `json:"results"`
}

type options struct {
	configPath string
	mboxDir    string
	storePath  string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "bouncepipe",
		Short:         "Classify one message from stdin",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pipe(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file")
	cmd.Flags().StringVar(&opts.mboxDir, "mbox-dir", "", "file the message into <dir>/<email type>")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "suppression database (default from config)")
	return cmd
}

func pipe(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.Logging, stderr)

	raw, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	a := bounce.New(bounce.WithLogger(logger)).Analyze(string(raw))
	out := output{Results: a.Results}
	if out.Results == nil {
		out.Results = []bounce.Result{}
	}
	if len(a.Results) > 0 {
		out.EmailType = a.Results[0].EmailType
	}

	if opts.mboxDir != "" {
		name := string(out.EmailType)
		if name == "" {
			name = Unclassified
		}
		filed, _, err := mailbox.EnsureMessageID(raw, "bouncepipe")
		if err != nil {
			return err
		}
		from := address.StripAngleBrackets(a.Headers["Return-path"])
		if err := mailbox.New(opts.mboxDir, logger).Append(name, filed, from, time.Now()); err != nil {
			return err
		}
		out.Mailbox = name
	}

	storePath := opts.storePath
	if storePath == "" {
		storePath = cfg.Store.Path
	}
	if storePath != "" {
		store, err := suppress.Open(ctx, storePath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if out.Suppressed, err = store.Record(ctx, a.Results); err != nil {
			return err
		}
	}

	logger.Info("message processed",
		"type", out.EmailType,
		"strategy", a.Strategy,
		"results", len(a.Results),
		"mailbox", out.Mailbox,
	)
	if err := json.NewEncoder(stdout).Encode(out); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitTempFail)
	}
	os.Exit(exitOK)
}
