// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so record sets can live in
// AWS S3 or a self-hosted MinIO instance, and so tests can use core/storage/mocks.
//
// # Layout
//
// The record service keeps three kinds of objects in one bucket:
//   - snapshots/<set>.json: the record tree of a set
//   - targets/<set>.json or targets/<set>.yaml: the desired field values
//   - reports/<set>/<run>.json: the decisions of one synchronization run
//
// # Helpers
//
//   - EnsureBucket: creates the bucket on first start.
//   - ReadObject / WriteObject: whole-object transfer, with ErrObjectNotFound for missing keys.
//   - ListNames: object base names below a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	data, err := storage.ReadObject(ctx, client, "records", "snapshots/weapons.json")
package storage
