package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"record-sync/core/config"
	"record-sync/core/logger"
	"record-sync/core/storage"
	"record-sync/core/synchronizer"
	"record-sync/feature/records"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	dryRunSync   bool
	snapshotFile string
	targetFile   string
	outFile      string
)

// syncCmd runs one record set, either from storage or from local files.
var syncCmd = &cobra.Command{
	Use:   "sync [set]",
	Short: "Synchronize a record set against its target file",
	Long: `Writes the values of a target file into the records of a snapshot.

With a set name the snapshot and target are read from storage and the run is
journaled like an HTTP-triggered run. With --snapshot and --target the files are
read from disk and the updated snapshot is written to --out (stdout by default).

Examples:
  # Report what would change
  sync weapons --dry-run

  # Apply and store the snapshot
  sync weapons

  # Local files
  sync --snapshot weapons.json --target targets.yaml --out weapons.new.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Report decisions without writing anything")
	syncCmd.Flags().StringVar(&snapshotFile, "snapshot", "", "Read the snapshot from a local file")
	syncCmd.Flags().StringVar(&targetFile, "target", "", "Read the target objects from a local file")
	syncCmd.Flags().StringVar(&outFile, "out", "", "Write the updated snapshot to this file instead of stdout")
	syncCmd.MarkFlagsRequiredTogether("snapshot", "target")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	opts := records.Options{DryRun: dryRunSync}

	if snapshotFile != "" {
		if len(args) > 0 {
			return fmt.Errorf("a set name cannot be combined with --snapshot")
		}
		report, err := syncLocal(cfg, l, opts)
		if report != nil {
			printSyncReport(l, report)
		}
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("a set name or --snapshot and --target are required")
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	svc := records.NewService(client, cfg.Storage.Bucket, cfg.Sync, openJournal(ctx, cfg, l), l)
	report, err := svc.Sync(ctx, args[0], opts)
	if report != nil {
		printSyncReport(l, report)
	}
	if err != nil {
		return fmt.Errorf("failed to sync %s: %w", args[0], err)
	}
	return nil
}

func syncLocal(cfg *config.Config, l *zap.Logger, opts records.Options) (*records.Report, error) {
	snapshot, err := os.Open(snapshotFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer snapshot.Close()

	target, err := os.Open(targetFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open target: %w", err)
	}
	defer target.Close()

	var out io.Writer = os.Stdout
	if outFile != "" && !opts.DryRun && !cfg.Sync.DryRun {
		f, err := os.Create(outFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	svc := records.NewService(nil, "", cfg.Sync, nil, l)
	return svc.SyncLocal(snapshot, target, out, opts)
}

// printSyncReport prints a run report using logger.
func printSyncReport(l *zap.Logger, report *records.Report) {
	s := report.Summary

	l.Info("Sync report",
		zap.String("set", report.Set),
		zap.String("run_id", report.RunID),
		zap.Bool("dry_run", report.DryRun),
		zap.Int("records", len(report.Records)),
		zap.Int("added", s.Added),
		zap.Int("changed", s.Changed),
		zap.Int("unchanged", s.Unchanged),
		zap.Int("skipped", s.Skipped),
		zap.Int("rejected", s.Rejected),
		zap.Int("rebuilt", s.Rebuilt),
	)

	for _, r := range report.Records {
		if r.Error != "" {
			l.Warn("Record not synchronized", zap.String("record", r.Name), zap.String("error", r.Error))
			continue
		}

		// Show a sample of writes per record (max 5)
		shown := 0
		for _, d := range r.Decisions {
			if d.Action == synchronizer.ActionUnchanged {
				continue
			}
			if shown == 5 {
				l.Info("Additional decisions not shown", zap.String("record", r.Name), zap.Int("writes", r.Summary.Writes()))
				break
			}
			l.Info("Decision",
				zap.String("record", r.Name),
				zap.String("path", d.Path),
				zap.String("action", string(d.Action)),
				zap.String("after", d.After),
				zap.String("reason", d.Reason),
			)
			shown++
		}
	}

	if report.DryRun {
		l.Info("Dry-run mode: No changes were made.")
	}
}
