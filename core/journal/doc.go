// Package journal records synchronization runs in a relational database.
//
// Each run gets a UUID, the record set it touched, its mode and its outcome. The decision
// trace of a run (one row per element the synchronizer visited) is stored alongside it,
// so past runs can be audited without keeping report objects around.
//
// # Tables
//
//   - sync_runs: one row per run with the decision counts.
//   - sync_decisions: one row per decision, keyed by run id.
//
// The journal works on any GORM dialector; the service uses MySQL in production and
// tests use an in-memory SQLite database.
package journal
