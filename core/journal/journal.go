package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"record-sync/core/database"
	"record-sync/core/synchronizer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

const decisionBatchSize = 200

// Journal persists synchronization runs and their decisions.
type Journal struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a Journal on db.
func New(db *gorm.DB) *Journal {
	return &Journal{db: db, now: time.Now}
}

// Migrate creates or updates the journal tables and verifies their columns.
func (j *Journal) Migrate(ctx context.Context) error {
	if err := j.db.WithContext(ctx).AutoMigrate(&Run{}, &Decision{}); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}

	required := map[string][]string{
		Run{}.TableName():      {"id", "record_set", "status", "started_at"},
		Decision{}.TableName(): {"run_id", "path", "action"},
	}
	for table, columns := range required {
		missing, err := database.MissingColumns(j.db.WithContext(ctx), table, columns)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("journal table %s is missing columns %v", table, missing)
		}
	}
	return nil
}

// Start records the beginning of a run and returns it.
func (j *Journal) Start(ctx context.Context, set string, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		RecordSet: set,
		DryRun:    dryRun,
		Status:    StatusRunning,
		StartedAt: j.now(),
	}
	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// Finish stores the outcome of a run. runErr marks the run failed.
func (j *Journal) Finish(ctx context.Context, run *Run, records int, summary synchronizer.Summary, decisions []Decision, runErr error) error {
	finished := j.now()
	run.FinishedAt = &finished
	run.Records = records
	run.Added = summary.Added
	run.Changed = summary.Changed
	run.Unchanged = summary.Unchanged
	run.Skipped = summary.Skipped
	run.Rejected = summary.Rejected
	run.Rebuilt = summary.Rebuilt
	run.Status = StatusSucceeded
	run.Error = ""
	if runErr != nil {
		run.Status = StatusFailed
		run.Error = runErr.Error()
	}

	for i := range decisions {
		decisions[i].RunID = run.ID
	}

	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(run).Error; err != nil {
			return err
		}
		if len(decisions) == 0 {
			return nil
		}
		return tx.CreateInBatches(decisions, decisionBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}
	return nil
}

// Runs lists the latest runs of a set, newest first.
func (j *Journal) Runs(ctx context.Context, set string, limit int) ([]Run, error) {
	var runs []Run
	q := j.db.WithContext(ctx).Where("record_set = ?", set).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs of %s: %w", set, err)
	}
	return runs, nil
}

// Run returns a run by id.
func (j *Journal) Run(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := j.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}

// Decisions returns the decisions of a run in the order they were taken.
func (j *Journal) Decisions(ctx context.Context, runID string) ([]Decision, error) {
	var decisions []Decision
	if err := j.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&decisions).Error; err != nil {
		return nil, fmt.Errorf("failed to list decisions of run %s: %w", runID, err)
	}
	return decisions, nil
}
