// Package target models target objects: nested, ordered descriptions of the field values a
// record should end up with.
//
// Values inside an Object are one of:
//   - nil
//   - bool
//   - int64 or float64
//   - string (plain text or a "Plugin.esp:001234" reference)
//   - []any (array elements)
//   - *Object (struct members, or flag name to bool for flags)
//
// Objects remember the order in which keys were set so that synchronization visits fields in
// the order the author wrote them. Decode accepts JSON as well as YAML documents.
package target
