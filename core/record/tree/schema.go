package tree

import (
	"fmt"
	"slices"

	"record-sync/core/record"
)

// Host vocabulary. Codes are indices into these lists.
var (
	valueTypeNames = []string{
		"vtUnknown", "vtBytes", "vtNumber", "vtString", "vtText", "vtReference",
		"vtFlags", "vtEnum", "vtColor", "vtArray", "vtStruct",
	}
	smashTypeNames = []string{
		"stUnknown", "stRecord", "stString", "stInteger", "stFloat", "stStruct",
		"stUnsortedArray", "stUnsortedStructArray", "stSortedArray", "stSortedStructArray",
		"stByteArray", "stUnion",
	}
)

// Vocabulary describes the tree's classification codes to record.LoadRegistry.
type Vocabulary struct{}

// ValueTypeNames returns the value type vocabulary.
func (Vocabulary) ValueTypeNames() []string { return slices.Clone(valueTypeNames) }

// SmashTypeNames returns the smash type vocabulary.
func (Vocabulary) SmashTypeNames() []string { return slices.Clone(smashTypeNames) }

// Definition describes an element a record may contain.
type Definition struct {
	// Name is the element name, unique among its siblings.
	Name string `json:"name,omitempty"`
	// ValueType is a name from the value type vocabulary, e.g. "vtNumber".
	ValueType string `json:"valueType"`
	// SmashType is a name from the smash type vocabulary, e.g. "stFloat".
	SmashType string `json:"smashType,omitempty"`
	// ReadOnly definitions exist only as a side effect of other elements and cannot be added.
	ReadOnly bool `json:"readOnly,omitempty"`
	// Options lists the labels of an enum.
	Options []string `json:"options,omitempty"`
	// Flags lists the flag names of a flags element, in bit order.
	Flags []string `json:"flags,omitempty"`
	// Elements are the members of a struct.
	Elements []*Definition `json:"elements,omitempty"`
	// Item is the definition of every item of an array.
	Item *Definition `json:"item,omitempty"`

	vt int
	st int
}

// resolve assigns host codes to def and everything below it.
func (def *Definition) resolve(path string) error {
	def.vt = slices.Index(valueTypeNames, def.ValueType)
	if def.vt < 0 {
		return fmt.Errorf("%s: unknown value type %q", path, def.ValueType)
	}

	def.st = 0
	if def.SmashType != "" {
		def.st = slices.Index(smashTypeNames, def.SmashType)
		if def.st < 0 {
			return fmt.Errorf("%s: unknown smash type %q", path, def.SmashType)
		}
	}

	for _, child := range def.Elements {
		if err := child.resolve(path + `\` + child.Name); err != nil {
			return err
		}
	}

	if def.Item != nil {
		if err := def.Item.resolve(path + `\[]`); err != nil {
			return err
		}
	}

	return nil
}

// member returns the struct member definition called name and its position.
func (def *Definition) member(name string) (*Definition, int) {
	for i, child := range def.Elements {
		if child.Name == name {
			return child, i
		}
	}
	return nil, -1
}

// kind is how a node stores its value.
type kind int

const (
	kindText kind = iota
	kindInt
	kindFloat
	kindReference
	kindFlags
	kindEnum
	kindStruct
	kindArray
)

func (def *Definition) kind(r *record.Registry) kind {
	switch r.ValueType(def.vt) {
	case record.ValueNumber:
		if r.SmashType(def.st) == record.SmashFloat {
			return kindFloat
		}
		return kindInt
	case record.ValueReference:
		return kindReference
	case record.ValueFlags:
		return kindFlags
	case record.ValueEnum:
		return kindEnum
	case record.ValueStruct:
		return kindStruct
	case record.ValueArray:
		return kindArray
	default:
		return kindText
	}
}
