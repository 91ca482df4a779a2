package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"time"

	"record-sync/core/journal"
	"record-sync/core/logger"
	"record-sync/core/record/tree"
	"record-sync/core/storage"
	"record-sync/core/target"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidSet is returned for set names that cannot be used as object keys.
	ErrInvalidSet = errors.New("invalid record set name")
	// ErrJournalDisabled is returned by history queries when no journal is configured.
	ErrJournalDisabled = errors.New("run journal is disabled")
)

var setName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// finishTimeout bounds storing the report and closing the journal run after the run's
// own context is done.
const finishTimeout = 30 * time.Second

// targetExtensions are tried in order when loading a target file.
var targetExtensions = []string{".json", ".yaml", ".yml"}

// Options controls a single run.
type Options struct {
	DryRun bool
}

// Service synchronizes record sets kept in object storage.
type Service struct {
	client  storage.Client
	bucket  string
	cfg     Config
	journal *journal.Journal
	logger  *zap.Logger

	sf  singleflight.Group
	now func() time.Time
}

// NewService creates a new records service. j may be nil to run without a journal.
func NewService(client storage.Client, bucket string, cfg Config, j *journal.Journal, logger *zap.Logger) *Service {
	if !cfg.Journal {
		j = nil
	}
	return &Service{
		client:  client,
		bucket:  bucket,
		cfg:     cfg,
		journal: j,
		logger:  logger,
		now:     time.Now,
	}
}

// Sets lists the record sets that have a snapshot.
func (s *Service) Sets(ctx context.Context) ([]string, error) {
	return storage.ListNames(ctx, s.client, s.bucket, s.cfg.SnapshotPrefix, ".json")
}

// Sync runs the target file of set against its snapshot. Concurrent calls for the same
// set and mode share one run and its report; that run uses the first caller's context.
func (s *Service) Sync(ctx context.Context, set string, opts Options) (*Report, error) {
	if !setName.MatchString(set) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSet, set)
	}
	opts.DryRun = opts.DryRun || s.cfg.DryRun

	key := set + "|" + strconv.FormatBool(opts.DryRun)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.sync(ctx, set, opts)
	})

	report, _ := v.(*Report)
	return report, err
}

func (s *Service) sync(ctx context.Context, set string, opts Options) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Set:       set,
		DryRun:    opts.DryRun,
		StartedAt: s.now(),
	}

	var run *journal.Run
	if s.journal != nil {
		var err error
		if run, err = s.journal.Start(ctx, set, opts.DryRun); err != nil {
			return nil, err
		}
		report.RunID = run.ID
	}

	log := logger.WithRun(s.logger, set, report.RunID)
	log.Info("Synchronization started", zap.Bool("dry_run", opts.DryRun))

	runErr := s.run(ctx, set, report, log)
	report.FinishedAt = s.now()
	if runErr != nil {
		report.Error = runErr.Error()
		log.Error("Synchronization failed", zap.Error(runErr))
	} else {
		log.Info("Synchronization finished",
			zap.Int("records", len(report.Records)),
			zap.Int("added", report.Summary.Added),
			zap.Int("changed", report.Summary.Changed),
			zap.Int("rebuilt", report.Summary.Rebuilt),
			zap.Int("rejected", report.Summary.Rejected),
		)
	}

	// Reports are kept for failed and cancelled runs too
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if err := s.storeReport(fctx, report); err != nil {
		log.Warn("Failed to store report", zap.Error(err))
	}

	if run != nil {
		if err := s.journal.Finish(fctx, run, len(report.Records), report.Summary, report.journalDecisions(), runErr); err != nil {
			log.Warn("Failed to journal run", zap.Error(err))
		}
	}

	return report, runErr
}

// run loads the set, applies its target and writes the snapshot back.
func (s *Service) run(ctx context.Context, set string, report *Report, log *zap.Logger) error {
	var (
		tr  *tree.Tree
		doc *target.Object
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tr, err = s.loadSnapshot(gctx, set)
		return err
	})
	g.Go(func() error {
		var err error
		doc, err = s.loadTarget(gctx, set)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := apply(tr, doc, report, log); err != nil {
		return err
	}

	if report.DryRun {
		return nil
	}

	var buf bytes.Buffer
	if err := tr.Encode(&buf); err != nil {
		return err
	}
	return storage.WriteObject(ctx, s.client, s.bucket, s.snapshotKey(set), buf.Bytes(), "application/json")
}

func (s *Service) loadSnapshot(ctx context.Context, set string) (*tree.Tree, error) {
	data, err := storage.ReadObject(ctx, s.client, s.bucket, s.snapshotKey(set))
	if err != nil {
		return nil, err
	}
	return tree.Decode(bytes.NewReader(data))
}

func (s *Service) loadTarget(ctx context.Context, set string) (*target.Object, error) {
	for _, ext := range targetExtensions {
		name := path.Join(s.cfg.TargetPrefix, set+ext)
		data, err := storage.ReadObject(ctx, s.client, s.bucket, name)
		if errors.Is(err, storage.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		doc, err := target.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("target of %s: %w", set, storage.ErrObjectNotFound)
}

func (s *Service) storeReport(ctx context.Context, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	name := path.Join(s.cfg.ReportPrefix, report.Set, report.RunID+".json")
	return storage.WriteObject(ctx, s.client, s.bucket, name, data, "application/json")
}

func (s *Service) snapshotKey(set string) string {
	return path.Join(s.cfg.SnapshotPrefix, set+".json")
}

// SyncLocal runs a target against a snapshot read from snapshot and writes the updated
// snapshot to out unless the run is a dry run. Nothing is stored or journaled.
func (s *Service) SyncLocal(snapshot, targetFile io.Reader, out io.Writer, opts Options) (*Report, error) {
	opts.DryRun = opts.DryRun || s.cfg.DryRun

	tr, err := tree.Decode(snapshot)
	if err != nil {
		return nil, err
	}
	doc, err := target.Decode(targetFile)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Set:       "local",
		DryRun:    opts.DryRun,
		StartedAt: s.now(),
	}
	log := logger.WithRun(s.logger, report.Set, report.RunID)

	err = apply(tr, doc, report, log)
	report.FinishedAt = s.now()
	if err != nil {
		report.Error = err.Error()
		return report, err
	}

	if !opts.DryRun && out != nil {
		if err := tr.Encode(out); err != nil {
			return report, err
		}
	}
	return report, nil
}

// Runs lists the journaled runs of a set, newest first. limit <= 0 uses the configured default.
func (s *Service) Runs(ctx context.Context, set string, limit int) ([]journal.Run, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	return s.journal.Runs(ctx, set, limit)
}

// Run returns a journaled run and its decisions.
func (s *Service) Run(ctx context.Context, id string) (*journal.Run, []journal.Decision, error) {
	if s.journal == nil {
		return nil, nil, ErrJournalDisabled
	}
	run, err := s.journal.Run(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	decisions, err := s.journal.Decisions(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, decisions, nil
}
