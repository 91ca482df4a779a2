// Package records synchronizes record sets kept in object storage.
//
// A record set is a snapshot of a record tree (snapshots/<set>.json) plus a target file
// (targets/<set>.json or .yaml) whose top-level keys name records and whose values are the
// target objects to write into them. A run loads both, synchronizes every named record,
// writes the snapshot back and stores a report of every decision under reports/<set>/.
//
// # Runs
//
//   - Concurrent requests for the same set and mode share a single run.
//   - Dry runs report what would change and write nothing but the report.
//   - A host fault aborts the run; the snapshot is not written.
//   - When a database is connected, runs and decisions are journaled.
//
// # HTTP Endpoints
//
//   - GET /records : Lists record sets.
//   - POST /records/:set/sync : Runs a synchronization (supports ?dry_run=true).
//   - GET /records/:set/runs : Lists journaled runs (supports ?limit=n).
//   - GET /records/:set/runs/:id : Returns one run with its decisions.
package records
