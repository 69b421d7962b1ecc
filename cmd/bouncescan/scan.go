package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/mailbox"
)

// scanRecord is one output line of scan.
type scanRecord struct {
	File  string `json:"file"`
	Index int    `json:"index"`
	bounce.Result
}

type fileScan struct {
	messages int
	records  []scanRecord
}

func newScanCmd(a *app) *cobra.Command {
	var (
		asJSON    bool
		storePath string
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "scan MBOX...",
		Short: "Classify every message of the given mbox files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				workers = a.cfg.Scan.Workers
			}
			ctx := cmd.Context()

			store, err := a.openStore(ctx, storePath)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			h := a.handler()
			scans := make([]fileScan, len(args))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(workers)
			for i, path := range args {
				g.Go(func() error {
					s, err := scanFile(path, h)
					if err != nil {
						return err
					}
					if store != nil {
						var results []bounce.Result
						for _, r := range s.records {
							results = append(results, r.Result)
						}
						if _, err := store.Record(gctx, results); err != nil {
							return fmt.Errorf("%s: %w", path, err)
						}
					}
					scans[i] = s
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var messages, results int
			for _, s := range scans {
				messages += s.messages
				results += len(s.records)
				if err := writeRecords(out, s.records, asJSON); err != nil {
					return err
				}
			}
			a.logger.Info("scan finished", "files", len(args), "messages", messages, "results", results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per result")
	cmd.Flags().StringVar(&storePath, "store", "", "record hard bounces and complaints in this suppression database")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "files scanned in parallel (default from config)")
	return cmd
}

func scanFile(path string, h *bounce.Handler) (fileScan, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileScan{}, fmt.Errorf("failed to open mbox: %w", err)
	}
	defer f.Close()

	var s fileScan
	err = mailbox.ReadEach(f, func(id int, raw string) error {
		s.messages++
		for _, r := range h.Parse(raw) {
			s.records = append(s.records, scanRecord{File: path, Index: id, Result: r})
		}
		return nil
	})
	if err != nil {
		return fileScan{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func writeRecords(w io.Writer, records []scanRecord, asJSON bool) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		var err error
		if asJSON {
			err = enc.Encode(r)
		} else {
			_, err = fmt.Fprintf(w, "%s#%d %s %s %s %s\n",
				r.File, r.Index, r.EmailType, r.Action, r.DeliveryStatus, r.Recipient)
		}
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
