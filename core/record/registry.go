package record

import "sync"

// Vocabulary is implemented by hosts that describe their classification codes by name.
// A code is the index of its name in the returned slice.
type Vocabulary interface {
	ValueTypeNames() []string
	SmashTypeNames() []string
}

// Host names understood by the registry. Names not listed here map to ValueOther and
// SmashOther respectively.
var (
	hostValueTypes = map[string]ValueType{
		"vtUnknown":   ValueUnknown,
		"vtNumber":    ValueNumber,
		"vtReference": ValueReference,
		"vtFlags":     ValueFlags,
		"vtEnum":      ValueEnum,
		"vtArray":     ValueArray,
		"vtStruct":    ValueStruct,
	}
	hostSmashTypes = map[string]SmashType{
		"stInteger":             SmashInteger,
		"stFloat":               SmashFloat,
		"stUnsortedArray":       SmashUnsortedArray,
		"stUnsortedStructArray": SmashUnsortedStructArray,
		"stSortedArray":         SmashSortedArray,
		"stSortedStructArray":   SmashSortedStructArray,
	}
)

// Registry translates host classification codes into ValueType and SmashType.
// It is immutable once built.
type Registry struct {
	valueTypes []ValueType
	smashTypes []SmashType
}

var (
	registryOnce sync.Once
	registry     *Registry
)

// LoadRegistry returns the process-wide registry, building it from v on first use.
// Later calls ignore v.
func LoadRegistry(v Vocabulary) *Registry {
	registryOnce.Do(func() {
		registry = NewRegistry(v)
	})
	return registry
}

// NewRegistry builds a registry from a host vocabulary.
func NewRegistry(v Vocabulary) *Registry {
	r := &Registry{}

	for _, name := range v.ValueTypeNames() {
		vt, ok := hostValueTypes[name]
		if !ok {
			vt = ValueOther
		}
		r.valueTypes = append(r.valueTypes, vt)
	}

	for _, name := range v.SmashTypeNames() {
		r.smashTypes = append(r.smashTypes, hostSmashTypes[name])
	}

	return r
}

// ValueType translates a host value type code. Codes outside the vocabulary are unknown.
func (r *Registry) ValueType(code int) ValueType {
	if code < 0 || code >= len(r.valueTypes) {
		return ValueUnknown
	}
	return r.valueTypes[code]
}

// SmashType translates a host smash type code.
func (r *Registry) SmashType(code int) SmashType {
	if code < 0 || code >= len(r.smashTypes) {
		return SmashOther
	}
	return r.smashTypes[code]
}
