package record

import "fmt"

// Handle is an opaque reference to one location in the host's record tree.
// The zero Handle means "no node".
type Handle uint32

// None is the Handle returned by lookups that found nothing.
const None Handle = 0

// ValueType is the semantic category of a node.
type ValueType int

const (
	// ValueUnknown marks derived or non-editable nodes.
	ValueUnknown ValueType = iota
	// ValueNumber is an integer or float scalar.
	ValueNumber
	// ValueReference is a pointer to another record by form id.
	ValueReference
	// ValueFlags is a set of named bits.
	ValueFlags
	// ValueEnum is a value chosen from a host-defined list of labels.
	ValueEnum
	// ValueArray is a sequence of child nodes.
	ValueArray
	// ValueStruct is a node with named children.
	ValueStruct
	// ValueOther covers every remaining scalar kind (strings, bytes, colors, ...).
	ValueOther
)

var valueTypeNames = [...]string{
	ValueUnknown:   "unknown",
	ValueNumber:    "number",
	ValueReference: "reference",
	ValueFlags:     "flags",
	ValueEnum:      "enum",
	ValueArray:     "array",
	ValueStruct:    "struct",
	ValueOther:     "other",
}

func (v ValueType) String() string {
	if v >= 0 && int(v) < len(valueTypeNames) {
		return valueTypeNames[v]
	}
	return fmt.Sprintf("ValueType(%d)", int(v))
}

// IsScalar reports whether nodes of this category hold a single comparable value.
func (v ValueType) IsScalar() bool {
	switch v {
	case ValueNumber, ValueReference, ValueFlags, ValueEnum, ValueOther:
		return true
	default:
		return false
	}
}

// SmashType is the structural sub-classification of a node.
type SmashType int

const (
	// SmashOther is any smash type the synchronizer does not distinguish.
	SmashOther SmashType = iota
	// SmashInteger is an integer number.
	SmashInteger
	// SmashFloat is a floating point number.
	SmashFloat
	// SmashUnsortedArray is an array whose item order is significant.
	SmashUnsortedArray
	// SmashUnsortedStructArray is an ordered array of structs.
	SmashUnsortedStructArray
	// SmashSortedArray is an array the host keeps sorted.
	SmashSortedArray
	// SmashSortedStructArray is a sorted array of structs.
	SmashSortedStructArray
)

var smashTypeNames = [...]string{
	SmashOther:               "other",
	SmashInteger:             "integer",
	SmashFloat:               "float",
	SmashUnsortedArray:       "unsorted array",
	SmashUnsortedStructArray: "unsorted struct array",
	SmashSortedArray:         "sorted array",
	SmashSortedStructArray:   "sorted struct array",
}

func (s SmashType) String() string {
	if s >= 0 && int(s) < len(smashTypeNames) {
		return smashTypeNames[s]
	}
	return fmt.Sprintf("SmashType(%d)", int(s))
}

// IsArray reports whether new children of a node with this smash type must be
// appended as anonymous array items instead of being added by name.
func (s SmashType) IsArray() bool {
	switch s {
	case SmashUnsortedArray, SmashUnsortedStructArray, SmashSortedArray, SmashSortedStructArray:
		return true
	default:
		return false
	}
}
