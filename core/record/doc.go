// Package record defines the boundary between the synchronizer and the editing host
// that owns the record tree.
//
// The host exposes records as a hierarchy of opaque handles. Every handle returned by the
// host must be released exactly once; WithHandle scopes that lifetime to a function call.
//
// # Store Interface
//
// Store lists every host operation the synchronizer consumes:
//   - Navigation: GetElement, AddElement, AddArrayItem, RemoveElement
//   - Classification: ValueType, SmashType
//   - Typed accessors: GetIntValue, GetFloatValue, GetUIntValue, GetValue, GetEnabledFlags, ...
//   - Reference resolution: LoadOrder
//   - Diagnostics: Path
//   - Lifetime: Release
//
// # Classification
//
// ValueType and SmashType are closed enumerations. Hosts speak in their own numeric codes
// drawn from a vocabulary of names ("vtNumber", "stFloat", ...); the Registry translates
// those codes once per process.
//
// # Form Identifiers
//
// References are written as "Plugin.esp:001234" in target objects. ResolveFormID turns that
// notation into the 8 hex digit identifier the host stores, using the plugin's load order.
//
// # Usage
//
//	err := record.WithHandle(store, h, func(id record.Handle) error {
//	    vt, err := store.ValueType(id)
//	    ...
//	})
package record
