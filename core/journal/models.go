package journal

import "time"

// Run states.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one synchronization of a record set.
type Run struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	RecordSet string `gorm:"column:record_set;size:191;index" json:"set"`
	DryRun    bool   `json:"dry_run"`
	Status    string `gorm:"size:16" json:"status"`
	Error     string `gorm:"type:text" json:"error,omitempty"`

	Records   int `json:"records"`
	Added     int `json:"added"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Rejected  int `json:"rejected"`
	Rebuilt   int `json:"rebuilt"`

	StartedAt  time.Time  `gorm:"index" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// TableName overrides the table name used by Run.
func (Run) TableName() string {
	return "sync_runs"
}

// Decision is one element decision taken during a run.
type Decision struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	RunID  string `gorm:"size:36;index" json:"run_id"`
	Record string `gorm:"size:191" json:"record"`
	Path   string `gorm:"type:text" json:"path"`
	Action string `gorm:"size:16" json:"action"`
	Before string `gorm:"type:text" json:"before,omitempty"`
	After  string `gorm:"type:text" json:"after,omitempty"`
	Reason string `gorm:"type:text" json:"reason,omitempty"`
}

// TableName overrides the table name used by Decision.
func (Decision) TableName() string {
	return "sync_decisions"
}
