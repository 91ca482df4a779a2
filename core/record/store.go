package record

import "errors"

// ErrCreationRejected is returned by Store.AddElement when the host refuses to create a
// named child, e.g. for count pseudo-fields that only exist as a side effect of their array.
var ErrCreationRejected = errors.New("element creation rejected")

// Store is the set of host operations the synchronizer consumes.
// Paths passed to GetElement, AddElement and RemoveElement name a direct child of the
// given handle; the empty path resolves the handle itself and returns a new handle to it.
type Store interface {
	// GetElement looks up a child. It returns None, nil when the child does not exist.
	GetElement(h Handle, path string) (Handle, error)
	// AddElement creates a named child. It fails with ErrCreationRejected for keys the
	// host will not create directly.
	AddElement(h Handle, path string) (Handle, error)
	// AddArrayItem appends an anonymous item to an array node.
	AddArrayItem(h Handle) (Handle, error)
	// RemoveElement deletes a child and everything below it.
	RemoveElement(h Handle, path string) error

	// ValueType classifies a node.
	ValueType(h Handle) (ValueType, error)
	// SmashType sub-classifies a node.
	SmashType(h Handle) (SmashType, error)

	GetIntValue(h Handle) (int64, error)
	SetIntValue(h Handle, v int64) error
	GetFloatValue(h Handle) (float64, error)
	SetFloatValue(h Handle, v float64) error
	// GetUIntValue returns the raw unsigned value of a node, used for form ids.
	GetUIntValue(h Handle) (uint32, error)
	// GetValue returns the host's textual rendering of a node's value.
	GetValue(h Handle) (string, error)
	// SetValue parses text into the node's value.
	SetValue(h Handle, v string) error
	// GetEnabledFlags returns the names of the enabled flags. Hosts may return a
	// single empty string when no flag is set; see NormalizeFlags.
	GetEnabledFlags(h Handle) ([]string, error)
	SetEnabledFlags(h Handle, flags []string) error
	// GetEnumOptions returns the ordered labels an enum node accepts.
	GetEnumOptions(h Handle) ([]string, error)

	// LoadOrder returns the position of a loaded plugin file.
	LoadOrder(plugin string) (int, error)

	// Path renders a node's location for diagnostics.
	Path(h Handle) string

	// Release frees a handle. Every handle obtained from the Store must be released once.
	Release(h Handle) error
}

// WithHandle runs fn with h and releases h afterwards, including when fn fails or panics.
// A release failure is reported only when fn itself succeeded.
func WithHandle(s Store, h Handle, fn func(Handle) error) (err error) {
	defer func() {
		if relErr := s.Release(h); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn(h)
}

// NormalizeFlags drops the empty entries hosts use to signal "no flags enabled".
func NormalizeFlags(flags []string) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
