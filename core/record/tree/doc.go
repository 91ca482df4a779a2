// Package tree is an in-memory editing host that implements record.Store.
//
// A Tree holds the records of one record set together with the schema definitions that
// describe which elements each record may contain, and the plugin files whose load order
// is used to resolve references. It reproduces the host behaviours the synchronizer has to
// cope with:
//   - handles are allocated per lookup and must be released (OpenHandles reports leaks)
//   - read-only definitions (count fields) reject AddElement with record.ErrCreationRejected
//   - GetEnabledFlags returns [""] when no flag is enabled
//   - accessors fail when the requested kind does not match the node
//
// # Snapshots
//
// Trees are persisted as JSON snapshots:
//
//	{
//	  "files": [{"name": "Skyrim.esm", "loadOrder": 0}],
//	  "definitions": {"WEAP": {"valueType": "vtStruct", "smashType": "stStruct", "elements": [...]}},
//	  "records": [{"name": "IronSword", "signature": "WEAP", "elements": [...]}]
//	}
//
// Decode reads a snapshot, Encode writes the current state back.
//
// A Tree is not safe for concurrent use.
package tree
