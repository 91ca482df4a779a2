package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"record-sync/core/record"
)

// Snapshot is the persisted form of a Tree.
type Snapshot struct {
	Files       []File                 `json:"files"`
	Definitions map[string]*Definition `json:"definitions"`
	Records     []RecordSnapshot       `json:"records"`
}

// RecordSnapshot is the persisted form of one record.
type RecordSnapshot struct {
	Name      string     `json:"name"`
	Signature string     `json:"signature"`
	Elements  []*Element `json:"elements,omitempty"`
}

// Element is the persisted state of one node. Array items have no name.
type Element struct {
	Name     string          `json:"name,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Elements []*Element      `json:"elements,omitempty"`
}

// Decode reads a JSON snapshot into a new Tree.
func Decode(r io.Reader) (*Tree, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return FromSnapshot(&snap)
}

// FromSnapshot builds a Tree from a decoded snapshot.
func FromSnapshot(snap *Snapshot) (*Tree, error) {
	for _, f := range snap.Files {
		if f.LoadOrder < 0 || f.LoadOrder > 0xFF {
			return nil, fmt.Errorf("file %s: load order %d out of range", f.Name, f.LoadOrder)
		}
	}
	t := New(snap.Files...)

	signatures := make([]string, 0, len(snap.Definitions))
	for sig := range snap.Definitions {
		signatures = append(signatures, sig)
	}
	sort.Strings(signatures)

	for _, sig := range signatures {
		if err := t.Define(sig, snap.Definitions[sig]); err != nil {
			return nil, err
		}
	}

	for _, rec := range snap.Records {
		if err := t.AddRecord(rec.Name, rec.Signature); err != nil {
			return nil, err
		}
		if err := t.load(t.findRecord(rec.Name), rec.Elements); err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.Name, err)
		}
	}

	return t, nil
}

func (t *Tree) load(parent *node, elements []*Element) error {
	for _, e := range elements {
		var c *node
		switch t.kindOf(parent) {
		case kindArray:
			if parent.def.Item == nil {
				return fmt.Errorf("%s: array has no item definition", t.path(parent))
			}
			c = t.newNode("", parent.def.Item, parent)
			parent.children = append(parent.children, c)
		case kindStruct:
			def, pos := parent.def.member(e.Name)
			if def == nil {
				return fmt.Errorf("%s: unknown element %q", t.path(parent), e.Name)
			}
			c = t.newNode(e.Name, def, parent)
			t.insertMember(parent, c, pos)
		default:
			return fmt.Errorf("%s: scalar elements have no children", t.path(parent))
		}

		if err := t.decodeValue(c, e.Value); err != nil {
			return err
		}
		if err := t.load(c, e.Elements); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) decodeValue(n *node, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}

	var err error
	switch t.kindOf(n) {
	case kindInt:
		err = json.Unmarshal(raw, &n.intVal)
	case kindFloat:
		err = json.Unmarshal(raw, &n.floatVal)
	case kindReference:
		var s string
		if err = json.Unmarshal(raw, &s); err == nil {
			var id uint64
			id, err = strconv.ParseUint(s, 16, 32)
			n.intVal = int64(id)
		} else {
			err = json.Unmarshal(raw, &n.intVal)
		}
	case kindFlags:
		var flags []string
		if err = json.Unmarshal(raw, &flags); err == nil {
			err = t.setFlags(n, flags)
		}
	case kindStruct, kindArray:
		return fmt.Errorf("%s: containers have no value", t.path(n))
	default:
		err = json.Unmarshal(raw, &n.text)
	}

	if err != nil {
		return fmt.Errorf("%s: invalid value %s: %w", t.path(n), raw, err)
	}
	return nil
}

// Snapshot captures the current state of the tree. It fails when a value has no JSON
// form, such as a NaN float.
func (t *Tree) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		Files:       t.files,
		Definitions: t.definitions,
		Records:     make([]RecordSnapshot, 0, len(t.records)),
	}
	for _, n := range t.records {
		elements, err := t.encodeChildren(n)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", n.name, err)
		}
		snap.Records = append(snap.Records, RecordSnapshot{
			Name:      n.name,
			Signature: t.signatures[n],
			Elements:  elements,
		})
	}
	return snap, nil
}

// Encode writes the tree as an indented JSON snapshot.
func (t *Tree) Encode(w io.Writer) error {
	snap, err := t.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

func (t *Tree) encodeChildren(n *node) ([]*Element, error) {
	if len(n.children) == 0 {
		return nil, nil
	}
	out := make([]*Element, 0, len(n.children))
	for _, c := range n.children {
		e, err := t.encodeNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (t *Tree) encodeNode(n *node) (*Element, error) {
	elements, err := t.encodeChildren(n)
	if err != nil {
		return nil, err
	}
	e := &Element{Name: n.name, Elements: elements}

	var v any
	switch t.kindOf(n) {
	case kindInt:
		v = n.intVal
	case kindFloat:
		v = n.floatVal
	case kindReference:
		v = record.FormatFormID(uint32(n.intVal))
	case kindFlags:
		if len(n.flags) > 0 {
			v = n.flags
		}
	case kindStruct, kindArray:
	default:
		if n.text != "" {
			v = n.text
		}
	}

	if v != nil {
		if e.Value, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("%s: %w", t.path(n), err)
		}
	}
	return e, nil
}
