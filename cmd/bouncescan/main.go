package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/config"
	"github.com/emurenMRz/bounceview/internal/logging"
	"github.com/emurenMRz/bounceview/internal/suppress"
)

var version = "dev"

// app carries what every subcommand needs once the config is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func (a *app) handler() *bounce.Handler {
	return bounce.New(bounce.WithLogger(a.logger))
}

// openStore opens the suppression store at path, falling back to the
// configured one. It returns nil when neither is set.
func (a *app) openStore(ctx context.Context, path string) (*suppress.Store, error) {
	if path == "" {
		path = a.cfg.Store.Path
	}
	if path == "" {
		return nil, nil
	}
	return suppress.Open(ctx, path, a.logger)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "bouncescan",
		Short: "Classify bounces, feedback loop reports and auto replies in mbox files",
		Long: `bouncescan reads mbox files and reports, for every message, whether it is a
delivery bounce, a feedback loop complaint or an automatic reply, together with
the affected recipients and their delivery status.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.Logging, cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to configuration file")

	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newSuppressedCmd(a))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bouncescan %s\n", cmd.Root().Version)
		},
	})
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
