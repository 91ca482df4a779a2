// Package synchronizer reconciles a record tree with a target object.
//
// Synchronize walks the target object key by key. For every key it looks up the matching
// child of the current record node, creating it when missing, and then dispatches on the
// child's value type:
//
//   - Struct: recurse with the child as the new parent.
//   - Array: remove the array, add it back empty and fill it from the target sequence using
//     the keys "[0]", "[1]", ... (arrays are always rebuilt, never diffed).
//   - Number, Reference, Flags, Enum and other scalars: read the current value, translate the
//     target value into what the host stores, compare, and write only when they differ.
//   - Unknown: ignored.
//
// The key "Record Header" is skipped at every level.
//
// # Decisions
//
// Every add, rejection, skip, rebuild, change and no-op is reported as a Decision, logged
// through zap and handed to Options.Observer. Trace collects decisions and summarizes them.
//
// # Errors
//
// Creation rejected by the host (record.ErrCreationRejected) is reported and the field is
// skipped. Any other host error stops the pass and is returned as a *HostFault; writes that
// already happened are kept.
//
// # Handles
//
// Every handle obtained from the store is released before the call that obtained it
// returns, on success and failure alike.
package synchronizer
