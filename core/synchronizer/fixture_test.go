package synchronizer_test

import (
	"strings"
	"testing"

	"record-sync/core/record"
	"record-sync/core/record/tree"
	"record-sync/core/synchronizer"
	"record-sync/core/target"

	"github.com/stretchr/testify/require"
)

const weaponSnapshot = `{
  "files": [
    {"name": "Skyrim.esm", "loadOrder": 0},
    {"name": "PluginA.ext", "loadOrder": 5}
  ],
  "definitions": {
    "WEAP": {
      "valueType": "vtStruct",
      "smashType": "stRecord",
      "elements": [
        {"name": "Record Header", "valueType": "vtStruct", "smashType": "stStruct", "elements": [
          {"name": "Signature", "valueType": "vtString", "smashType": "stString"},
          {"name": "Version", "valueType": "vtNumber", "smashType": "stInteger"}
        ]},
        {"name": "Name", "valueType": "vtString", "smashType": "stString"},
        {"name": "Count", "valueType": "vtNumber", "smashType": "stInteger", "readOnly": true},
        {"name": "Tags", "valueType": "vtArray", "smashType": "stUnsortedArray",
          "item": {"valueType": "vtString", "smashType": "stString"}},
        {"name": "Keywords", "valueType": "vtArray", "smashType": "stSortedArray",
          "item": {"valueType": "vtReference", "smashType": "stInteger"}},
        {"name": "Data", "valueType": "vtStruct", "smashType": "stStruct", "elements": [
          {"name": "Value", "valueType": "vtNumber", "smashType": "stInteger"},
          {"name": "Weight", "valueType": "vtNumber", "smashType": "stFloat"},
          {"name": "Raw", "valueType": "vtNumber", "smashType": "stUnknown"}
        ]},
        {"name": "Flags", "valueType": "vtFlags", "smashType": "stInteger",
          "flags": ["Flag A", "Flag B", "Non-playable"]},
        {"name": "Animation Type", "valueType": "vtEnum", "smashType": "stInteger",
          "options": ["HandToHandMelee", "OneHandSword", "OneHandDagger", "TwoHandSword"]},
        {"name": "Template", "valueType": "vtReference", "smashType": "stInteger"},
        {"name": "Effects", "valueType": "vtArray", "smashType": "stUnsortedStructArray",
          "item": {"valueType": "vtStruct", "smashType": "stStruct", "elements": [
            {"name": "Base Effect", "valueType": "vtReference", "smashType": "stInteger"},
            {"name": "Magnitude", "valueType": "vtNumber", "smashType": "stFloat"}
          ]}},
        {"name": "Matrix", "valueType": "vtArray", "smashType": "stUnsortedArray",
          "item": {"valueType": "vtArray", "smashType": "stUnsortedArray",
            "item": {"valueType": "vtNumber", "smashType": "stInteger"}}},
        {"name": "Derived", "valueType": "vtUnknown", "smashType": "stUnknown"}
      ]
    }
  },
  "records": [
    {"name": "IronSword", "signature": "WEAP", "elements": [
      {"name": "Record Header", "elements": [
        {"name": "Signature", "value": "WEAP"},
        {"name": "Version", "value": 44}
      ]},
      {"name": "Name", "value": "Rusty Sword"},
      {"name": "Tags", "elements": [{"value": "a"}, {"value": "b"}, {"value": "c"}]},
      {"name": "Data", "elements": [
        {"name": "Value", "value": 10},
        {"name": "Weight", "value": 1.00005}
      ]},
      {"name": "Flags", "value": ["Flag B"]},
      {"name": "Animation Type", "value": "OneHandSword"},
      {"name": "Template", "value": "00012EB7"},
      {"name": "Derived", "value": "computed"}
    ]}
  ]
}`

type fixture struct {
	tree  *tree.Tree
	root  record.Handle
	trace *synchronizer.Trace
	sync  *synchronizer.Synchronizer
}

func newFixture(t *testing.T, opts synchronizer.Options) *fixture {
	t.Helper()

	tr, err := tree.Decode(strings.NewReader(weaponSnapshot))
	require.NoError(t, err)

	root, err := tr.Record("IronSword")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Release(root) })

	trace := &synchronizer.Trace{}
	opts.Observer = trace.Record

	return &fixture{
		tree:  tr,
		root:  root,
		trace: trace,
		sync:  synchronizer.New(tr, nil, opts),
	}
}

func (f *fixture) run(t *testing.T, targetJSON string) error {
	t.Helper()
	obj, err := target.Decode(strings.NewReader(targetJSON))
	require.NoError(t, err)
	return f.sync.Synchronize(f.root, obj)
}

// value reads the textual value at a backslash separated path below the record root.
func (f *fixture) value(t *testing.T, path string) string {
	t.Helper()
	h := f.find(t, path)
	defer f.tree.Release(h)
	v, err := f.tree.GetValue(h)
	require.NoError(t, err)
	return v
}

func (f *fixture) exists(t *testing.T, path string) bool {
	t.Helper()
	h := f.walk(t, path)
	if h == record.None {
		return false
	}
	require.NoError(t, f.tree.Release(h))
	return true
}

func (f *fixture) find(t *testing.T, path string) record.Handle {
	t.Helper()
	h := f.walk(t, path)
	require.NotEqual(t, record.None, h, "element %s not found", path)
	return h
}

func (f *fixture) walk(t *testing.T, path string) record.Handle {
	t.Helper()
	cur, err := f.tree.GetElement(f.root, "")
	require.NoError(t, err)
	for _, part := range strings.Split(path, `\`) {
		next, err := f.tree.GetElement(cur, part)
		require.NoError(t, err)
		require.NoError(t, f.tree.Release(cur))
		if next == record.None {
			return record.None
		}
		cur = next
	}
	return cur
}

// decisions returns the actions recorded for a path suffix.
func (f *fixture) decisions(suffix string) []synchronizer.Decision {
	var out []synchronizer.Decision
	for _, d := range f.trace.Decisions {
		if strings.HasSuffix(d.Path, suffix) {
			out = append(out, d)
		}
	}
	return out
}
