package tree

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"record-sync/core/record"
)

var (
	// ErrInvalidHandle is returned for handles that were never issued or already released.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrTypeMismatch is returned when an accessor does not match the node's kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNotFound is returned when a record, element or file does not exist.
	ErrNotFound = errors.New("not found")
)

// File is a loaded plugin file.
type File struct {
	Name      string `json:"name"`
	LoadOrder int    `json:"loadOrder"`
}

type node struct {
	name     string
	def      *Definition
	parent   *node
	children []*node

	intVal   int64
	floatVal float64
	text     string
	flags    []string
}

// Tree is an in-memory record set.
type Tree struct {
	registry    *record.Registry
	files       []File
	definitions map[string]*Definition
	records     []*node
	signatures  map[*node]string

	handles map[record.Handle]*node
	next    record.Handle
}

// New creates an empty tree with the given plugin files.
func New(files ...File) *Tree {
	return &Tree{
		registry:    record.LoadRegistry(Vocabulary{}),
		files:       files,
		definitions: make(map[string]*Definition),
		signatures:  make(map[*node]string),
		handles:     make(map[record.Handle]*node),
	}
}

// Define registers the definition of a record signature.
func (t *Tree) Define(signature string, def *Definition) error {
	if err := def.resolve(signature); err != nil {
		return err
	}
	if t.registry.ValueType(def.vt) != record.ValueStruct {
		return fmt.Errorf("%s: record definitions must be structs", signature)
	}
	t.definitions[signature] = def
	return nil
}

// AddRecord creates an empty record of a defined signature.
func (t *Tree) AddRecord(name, signature string) error {
	def, ok := t.definitions[signature]
	if !ok {
		return fmt.Errorf("signature %s: %w", signature, ErrNotFound)
	}
	if t.findRecord(name) != nil {
		return fmt.Errorf("record %s already exists", name)
	}

	n := t.newNode(name, def, nil)
	t.records = append(t.records, n)
	t.signatures[n] = signature
	return nil
}

// Records lists record names in insertion order.
func (t *Tree) Records() []string {
	names := make([]string, 0, len(t.records))
	for _, n := range t.records {
		names = append(names, n.name)
	}
	return names
}

// Record returns a handle to the root of a record. The caller must release it.
func (t *Tree) Record(name string) (record.Handle, error) {
	n := t.findRecord(name)
	if n == nil {
		return record.None, fmt.Errorf("record %s: %w", name, ErrNotFound)
	}
	return t.issue(n), nil
}

// OpenHandles returns the number of handles that have not been released.
func (t *Tree) OpenHandles() int {
	return len(t.handles)
}

func (t *Tree) findRecord(name string) *node {
	for _, n := range t.records {
		if n.name == name {
			return n
		}
	}
	return nil
}

func (t *Tree) newNode(name string, def *Definition, parent *node) *node {
	n := &node{name: name, def: def, parent: parent}
	if def.kind(t.registry) == kindEnum && len(def.Options) > 0 {
		n.text = def.Options[0]
	}
	return n
}

func (t *Tree) issue(n *node) record.Handle {
	t.next++
	t.handles[t.next] = n
	return t.next
}

func (t *Tree) lookup(h record.Handle) (*node, error) {
	n, ok := t.handles[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return n, nil
}

func (t *Tree) kindOf(n *node) kind {
	return n.def.kind(t.registry)
}

// parseIndex parses an array key of the form "[3]".
func parseIndex(path string) (int, bool) {
	if !strings.HasPrefix(path, "[") || !strings.HasSuffix(path, "]") {
		return 0, false
	}
	i, err := strconv.Atoi(path[1 : len(path)-1])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func (t *Tree) child(n *node, path string) *node {
	switch t.kindOf(n) {
	case kindArray:
		if i, ok := parseIndex(path); ok && i < len(n.children) {
			return n.children[i]
		}
	case kindStruct:
		for _, c := range n.children {
			if c.name == path {
				return c
			}
		}
	}
	return nil
}

// GetElement implements record.Store.
func (t *Tree) GetElement(h record.Handle, path string) (record.Handle, error) {
	n, err := t.lookup(h)
	if err != nil {
		return record.None, err
	}
	if path == "" {
		return t.issue(n), nil
	}
	if c := t.child(n, path); c != nil {
		return t.issue(c), nil
	}
	return record.None, nil
}

// AddElement implements record.Store. Adding an element that already exists returns it.
func (t *Tree) AddElement(h record.Handle, path string) (record.Handle, error) {
	n, err := t.lookup(h)
	if err != nil {
		return record.None, err
	}
	if c := t.child(n, path); c != nil {
		return t.issue(c), nil
	}
	if t.kindOf(n) != kindStruct {
		return record.None, fmt.Errorf("%w: cannot add %q to %s", record.ErrCreationRejected, path, t.path(n))
	}

	def, pos := n.def.member(path)
	if def == nil {
		return record.None, fmt.Errorf("%w: %s has no element %q", record.ErrCreationRejected, t.path(n), path)
	}
	if def.ReadOnly {
		return record.None, fmt.Errorf("%w: %s\\%s is read-only", record.ErrCreationRejected, t.path(n), path)
	}

	c := t.newNode(path, def, n)
	t.insertMember(n, c, pos)
	return t.issue(c), nil
}

// insertMember keeps struct children in definition order.
func (t *Tree) insertMember(parent, c *node, pos int) {
	at := len(parent.children)
	for i, sibling := range parent.children {
		if _, p := parent.def.member(sibling.name); p > pos {
			at = i
			break
		}
	}
	parent.children = slices.Insert(parent.children, at, c)
}

// AddArrayItem implements record.Store.
func (t *Tree) AddArrayItem(h record.Handle) (record.Handle, error) {
	n, err := t.lookup(h)
	if err != nil {
		return record.None, err
	}
	if t.kindOf(n) != kindArray || n.def.Item == nil {
		return record.None, fmt.Errorf("%w: %s is not an array", ErrTypeMismatch, t.path(n))
	}

	c := t.newNode("", n.def.Item, n)
	n.children = append(n.children, c)
	return t.issue(c), nil
}

// RemoveElement implements record.Store.
func (t *Tree) RemoveElement(h record.Handle, path string) error {
	n, err := t.lookup(h)
	if err != nil {
		return err
	}
	c := t.child(n, path)
	if c == nil {
		return fmt.Errorf("%s\\%s: %w", t.path(n), path, ErrNotFound)
	}
	n.children = slices.DeleteFunc(n.children, func(x *node) bool { return x == c })
	c.parent = nil
	return nil
}

// ValueType implements record.Store.
func (t *Tree) ValueType(h record.Handle) (record.ValueType, error) {
	n, err := t.lookup(h)
	if err != nil {
		return record.ValueUnknown, err
	}
	return t.registry.ValueType(n.def.vt), nil
}

// SmashType implements record.Store.
func (t *Tree) SmashType(h record.Handle) (record.SmashType, error) {
	n, err := t.lookup(h)
	if err != nil {
		return record.SmashOther, err
	}
	return t.registry.SmashType(n.def.st), nil
}

func (t *Tree) expect(h record.Handle, kinds ...kind) (*node, error) {
	n, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(kinds, t.kindOf(n)) {
		return nil, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, t.path(n), n.def.ValueType)
	}
	return n, nil
}

// GetIntValue implements record.Store.
func (t *Tree) GetIntValue(h record.Handle) (int64, error) {
	n, err := t.expect(h, kindInt, kindReference)
	if err != nil {
		return 0, err
	}
	return n.intVal, nil
}

// SetIntValue implements record.Store.
func (t *Tree) SetIntValue(h record.Handle, v int64) error {
	n, err := t.expect(h, kindInt)
	if err != nil {
		return err
	}
	n.intVal = v
	return nil
}

// GetFloatValue implements record.Store.
func (t *Tree) GetFloatValue(h record.Handle) (float64, error) {
	n, err := t.expect(h, kindFloat)
	if err != nil {
		return 0, err
	}
	return n.floatVal, nil
}

// SetFloatValue implements record.Store.
func (t *Tree) SetFloatValue(h record.Handle, v float64) error {
	n, err := t.expect(h, kindFloat)
	if err != nil {
		return err
	}
	n.floatVal = v
	return nil
}

// GetUIntValue implements record.Store.
func (t *Tree) GetUIntValue(h record.Handle) (uint32, error) {
	n, err := t.expect(h, kindInt, kindReference)
	if err != nil {
		return 0, err
	}
	return uint32(n.intVal), nil
}

// GetValue implements record.Store.
func (t *Tree) GetValue(h record.Handle) (string, error) {
	n, err := t.lookup(h)
	if err != nil {
		return "", err
	}
	switch t.kindOf(n) {
	case kindInt:
		return strconv.FormatInt(n.intVal, 10), nil
	case kindFloat:
		return strconv.FormatFloat(n.floatVal, 'f', -1, 64), nil
	case kindReference:
		return record.FormatFormID(uint32(n.intVal)), nil
	case kindFlags:
		return strings.Join(n.flags, ", "), nil
	case kindStruct, kindArray:
		return "", nil
	default:
		return n.text, nil
	}
}

// SetValue implements record.Store.
func (t *Tree) SetValue(h record.Handle, v string) error {
	n, err := t.lookup(h)
	if err != nil {
		return err
	}
	switch t.kindOf(n) {
	case kindInt:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q: %w", t.path(n), v, err)
		}
		n.intVal = i
	case kindFloat:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid float %q: %w", t.path(n), v, err)
		}
		n.floatVal = f
	case kindReference:
		id, err := strconv.ParseUint(v, 16, 32)
		if err != nil {
			return fmt.Errorf("%s: invalid form id %q: %w", t.path(n), v, err)
		}
		n.intVal = int64(id)
	case kindEnum:
		if !slices.Contains(n.def.Options, v) {
			return fmt.Errorf("%s: %q is not a valid option", t.path(n), v)
		}
		n.text = v
	case kindFlags:
		var flags []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				flags = append(flags, f)
			}
		}
		return t.setFlags(n, flags)
	case kindStruct, kindArray:
		return fmt.Errorf("%w: cannot set value of %s", ErrTypeMismatch, t.path(n))
	default:
		n.text = v
	}
	return nil
}

// GetEnabledFlags implements record.Store. Like real hosts it returns [""] when no flag is set.
func (t *Tree) GetEnabledFlags(h record.Handle) ([]string, error) {
	n, err := t.expect(h, kindFlags)
	if err != nil {
		return nil, err
	}
	if len(n.flags) == 0 {
		return []string{""}, nil
	}
	return slices.Clone(n.flags), nil
}

// SetEnabledFlags implements record.Store.
func (t *Tree) SetEnabledFlags(h record.Handle, flags []string) error {
	n, err := t.expect(h, kindFlags)
	if err != nil {
		return err
	}
	return t.setFlags(n, flags)
}

// setFlags stores flags in definition order.
func (t *Tree) setFlags(n *node, flags []string) error {
	for _, f := range flags {
		if !slices.Contains(n.def.Flags, f) {
			return fmt.Errorf("%s: unknown flag %q", t.path(n), f)
		}
	}
	enabled := make([]string, 0, len(flags))
	for _, f := range n.def.Flags {
		if slices.Contains(flags, f) {
			enabled = append(enabled, f)
		}
	}
	n.flags = enabled
	return nil
}

// GetEnumOptions implements record.Store.
func (t *Tree) GetEnumOptions(h record.Handle) ([]string, error) {
	n, err := t.expect(h, kindEnum)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.def.Options), nil
}

// LoadOrder implements record.Store.
func (t *Tree) LoadOrder(plugin string) (int, error) {
	for _, f := range t.files {
		if strings.EqualFold(f.Name, plugin) {
			return f.LoadOrder, nil
		}
	}
	return 0, fmt.Errorf("file %s: %w", plugin, ErrNotFound)
}

// Path implements record.Store.
func (t *Tree) Path(h record.Handle) string {
	n, ok := t.handles[h]
	if !ok {
		return "<invalid>"
	}
	return t.path(n)
}

func (t *Tree) path(n *node) string {
	var parts []string
	for c := n; c != nil; c = c.parent {
		name := c.name
		if c.parent != nil && t.kindOf(c.parent) == kindArray {
			name = fmt.Sprintf("[%d]", slices.Index(c.parent.children, c))
		}
		parts = append(parts, name)
	}
	slices.Reverse(parts)
	return strings.Join(parts, `\`)
}

// Release implements record.Store.
func (t *Tree) Release(h record.Handle) error {
	if _, ok := t.handles[h]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	delete(t.handles, h)
	return nil
}

var _ record.Store = (*Tree)(nil)
