package records

import (
	"errors"
	"fmt"
	"time"

	"record-sync/core/journal"
	"record-sync/core/record"
	"record-sync/core/record/tree"
	"record-sync/core/synchronizer"
	"record-sync/core/target"

	"go.uber.org/zap"
)

// RecordResult is the outcome of synchronizing one record.
type RecordResult struct {
	Name      string                  `json:"name"`
	Summary   synchronizer.Summary    `json:"summary"`
	Decisions []synchronizer.Decision `json:"decisions,omitempty"`
	// Error is set when the record could not be synchronized.
	Error string `json:"error,omitempty"`
}

// Report describes one run over a record set.
type Report struct {
	RunID      string               `json:"run_id"`
	Set        string               `json:"set"`
	DryRun     bool                 `json:"dry_run"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Summary    synchronizer.Summary `json:"summary"`
	Records    []RecordResult       `json:"records"`
	Error      string               `json:"error,omitempty"`
}

// journalDecisions flattens the report into journal rows.
func (r *Report) journalDecisions() []journal.Decision {
	var out []journal.Decision
	for _, rec := range r.Records {
		for _, d := range rec.Decisions {
			out = append(out, journal.Decision{
				Record: rec.Name,
				Path:   d.Path,
				Action: string(d.Action),
				Before: d.Before,
				After:  d.After,
				Reason: d.Reason,
			})
		}
	}
	return out
}

// apply synchronizes every record named in doc. Top-level keys are record names and
// their values the target objects. Records that are missing or not described by a
// mapping are reported and skipped; a host fault aborts the run.
func apply(tr *tree.Tree, doc *target.Object, report *Report, log *zap.Logger) error {
	for name, value := range doc.All() {
		result := RecordResult{Name: name}

		obj, ok := target.AsObject(value)
		if !ok {
			result.Error = fmt.Sprintf("expected a mapping, got %T", value)
			report.Records = append(report.Records, result)
			log.Warn("Record target is not a mapping", zap.String("record", name))
			continue
		}

		root, err := tr.Record(name)
		if errors.Is(err, tree.ErrNotFound) {
			result.Error = "record not found"
			report.Records = append(report.Records, result)
			log.Warn("Record not found", zap.String("record", name))
			continue
		}
		if err != nil {
			return err
		}

		trace := &synchronizer.Trace{}
		s := synchronizer.New(tr, log.With(zap.String("record", name)), synchronizer.Options{
			DryRun:   report.DryRun,
			Observer: trace.Record,
		})

		err = record.WithHandle(tr, root, func(h record.Handle) error {
			return s.Synchronize(h, obj)
		})

		result.Decisions = trace.Decisions
		result.Summary = trace.Summary()
		report.Summary.Add(result.Summary)
		if err != nil {
			result.Error = err.Error()
		}
		report.Records = append(report.Records, result)

		if err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}

		log.Debug("Record synchronized",
			zap.String("record", name),
			zap.Int("writes", result.Summary.Writes()),
		)
	}
	return nil
}
