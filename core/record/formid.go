package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedReference is returned for references not written as "Plugin.esp:stem".
var ErrMalformedReference = errors.New("malformed reference")

// NullFormID is the identifier written for the null reference.
const NullFormID = "00000000"

// FormatFormID renders a raw form id as 8 upper-case hex digits.
func FormatFormID(id uint32) string {
	return fmt.Sprintf("%08X", id)
}

// SplitReference splits "Plugin.esp:001234" into the plugin name and the form id stem.
// The split happens at the last colon so plugin names may contain colons.
func SplitReference(ref string) (plugin, stem string, ok bool) {
	i := strings.LastIndex(ref, ":")
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

// ResolveFormID prefixes the plugin's load order (2 hex digits) onto the stem of a
// "Plugin.esp:001234" reference. The literal "0" resolves to NullFormID.
func ResolveFormID(s Store, ref string) (string, error) {
	if ref == "0" {
		return NullFormID, nil
	}

	plugin, stem, ok := SplitReference(ref)
	if !ok || !isFormIDStem(stem) {
		return "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}

	loadOrder, err := s.LoadOrder(plugin)
	if err != nil {
		return "", fmt.Errorf("failed to resolve load order of %s: %w", plugin, err)
	}

	if loadOrder < 0 || loadOrder > 0xFF {
		return "", fmt.Errorf("load order %d of %s does not fit a form id prefix", loadOrder, plugin)
	}

	return fmt.Sprintf("%02X", loadOrder) + strings.ToUpper(stem), nil
}

// isFormIDStem reports whether s is the 6 hex digit part of a form id.
func isFormIDStem(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
