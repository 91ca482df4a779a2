package records

// Config holds the record synchronization settings.
type Config struct {
	// DryRun forces every run to report without writing.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// SnapshotPrefix is the storage prefix of record set snapshots.
	SnapshotPrefix string `mapstructure:"snapshot_prefix" default:"snapshots"`
	// TargetPrefix is the storage prefix of target files.
	TargetPrefix string `mapstructure:"target_prefix" default:"targets"`
	// ReportPrefix is the storage prefix of run reports.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
	// Journal enables the run journal when a database is available.
	Journal bool `mapstructure:"journal" default:"true"`
	// HistoryLimit is the default number of runs listed per set.
	HistoryLimit int `mapstructure:"history_limit" default:"20"`
}
