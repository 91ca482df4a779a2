package tree_test

import (
	"bytes"
	"math"
	"testing"

	"record-sync/core/record"
	"record-sync/core/record/tree"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func armorDefinition() *tree.Definition {
	return &tree.Definition{
		ValueType: "vtStruct",
		SmashType: "stRecord",
		Elements: []*tree.Definition{
			{Name: "Name", ValueType: "vtString", SmashType: "stString"},
			{Name: "Rating", ValueType: "vtNumber", SmashType: "stFloat"},
			{Name: "Slots", ValueType: "vtNumber", SmashType: "stInteger", ReadOnly: true},
			{Name: "Flags", ValueType: "vtFlags", SmashType: "stInteger", Flags: []string{"Heavy", "Light"}},
			{Name: "Kind", ValueType: "vtEnum", SmashType: "stInteger", Options: []string{"Cloth", "Plate"}},
			{Name: "Model", ValueType: "vtReference", SmashType: "stInteger"},
			{Name: "Keywords", ValueType: "vtArray", SmashType: "stSortedArray",
				Item: &tree.Definition{ValueType: "vtReference", SmashType: "stInteger"}},
		},
	}
}

func newArmorTree(t *testing.T) (*tree.Tree, record.Handle) {
	t.Helper()
	tr := tree.New(tree.File{Name: "Skyrim.esm", LoadOrder: 0}, tree.File{Name: "Dawnguard.esm", LoadOrder: 2})
	require.NoError(t, tr.Define("ARMO", armorDefinition()))
	require.NoError(t, tr.AddRecord("Cuirass", "ARMO"))

	root, err := tr.Record("Cuirass")
	require.NoError(t, err)
	return tr, root
}

func TestTree_Define(t *testing.T) {
	tr := tree.New()

	err := tr.Define("BAD", &tree.Definition{ValueType: "vtNumber"})
	assert.Error(t, err)

	err = tr.Define("BAD", &tree.Definition{ValueType: "vtStruct", Elements: []*tree.Definition{
		{Name: "X", ValueType: "vtNope"},
	}})
	assert.ErrorContains(t, err, `BAD\X: unknown value type "vtNope"`)

	assert.ErrorIs(t, tr.AddRecord("Foo", "NONE"), tree.ErrNotFound)
}

func TestTree_Handles(t *testing.T) {
	tr, root := newArmorTree(t)
	assert.Equal(t, 1, tr.OpenHandles())

	self, err := tr.GetElement(root, "")
	require.NoError(t, err)
	assert.NotEqual(t, root, self)
	assert.Equal(t, "Cuirass", tr.Path(self))

	missing, err := tr.GetElement(root, "Name")
	require.NoError(t, err)
	assert.Equal(t, record.None, missing)

	require.NoError(t, tr.Release(self))
	assert.ErrorIs(t, tr.Release(self), tree.ErrInvalidHandle)
	_, err = tr.ValueType(self)
	assert.ErrorIs(t, err, tree.ErrInvalidHandle)

	require.NoError(t, tr.Release(root))
	assert.Equal(t, 0, tr.OpenHandles())
}

func TestTree_AddElement(t *testing.T) {
	tr, root := newArmorTree(t)

	kind, err := tr.AddElement(root, "Kind")
	require.NoError(t, err)
	name, err := tr.AddElement(root, "Name")
	require.NoError(t, err)

	v, err := tr.GetValue(kind)
	require.NoError(t, err)
	assert.Equal(t, "Cloth", v, "enums start at their first option")

	again, err := tr.AddElement(root, "Name")
	require.NoError(t, err)
	assert.Equal(t, tr.Path(name), tr.Path(again))

	_, err = tr.AddElement(root, "Slots")
	assert.ErrorIs(t, err, record.ErrCreationRejected)
	_, err = tr.AddElement(root, "Bogus")
	assert.ErrorIs(t, err, record.ErrCreationRejected)
	_, err = tr.AddElement(name, "Child")
	assert.ErrorIs(t, err, record.ErrCreationRejected)

	// Members are kept in definition order.
	snap, err := tr.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Records[0].Elements, 2)
	assert.Equal(t, "Name", snap.Records[0].Elements[0].Name)
	assert.Equal(t, "Kind", snap.Records[0].Elements[1].Name)
}

func TestTree_Arrays(t *testing.T) {
	tr, root := newArmorTree(t)

	kw, err := tr.AddElement(root, "Keywords")
	require.NoError(t, err)

	for _, id := range []string{"0001E718", "0200ABCD"} {
		item, err := tr.AddArrayItem(kw)
		require.NoError(t, err)
		require.NoError(t, tr.SetValue(item, id))
	}

	second, err := tr.GetElement(kw, "[1]")
	require.NoError(t, err)
	assert.Equal(t, `Cuirass\Keywords\[1]`, tr.Path(second))
	u, err := tr.GetUIntValue(second)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0200ABCD), u)

	require.NoError(t, tr.RemoveElement(kw, "[0]"))
	first, err := tr.GetElement(kw, "[0]")
	require.NoError(t, err)
	v, err := tr.GetValue(first)
	require.NoError(t, err)
	assert.Equal(t, "0200ABCD", v)

	assert.ErrorIs(t, tr.RemoveElement(kw, "[5]"), tree.ErrNotFound)
	_, err = tr.AddArrayItem(root)
	assert.ErrorIs(t, err, tree.ErrTypeMismatch)
}

func TestTree_TypedAccessors(t *testing.T) {
	tr, root := newArmorTree(t)

	rating, err := tr.AddElement(root, "Rating")
	require.NoError(t, err)
	require.NoError(t, tr.SetFloatValue(rating, 12.5))
	f, err := tr.GetFloatValue(rating)
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	_, err = tr.GetIntValue(rating)
	assert.ErrorIs(t, err, tree.ErrTypeMismatch)
	assert.ErrorIs(t, tr.SetIntValue(rating, 3), tree.ErrTypeMismatch)
	assert.Error(t, tr.SetValue(rating, "heavy"))

	kind, err := tr.AddElement(root, "Kind")
	require.NoError(t, err)
	assert.Error(t, tr.SetValue(kind, "Leather"))
	require.NoError(t, tr.SetValue(kind, "Plate"))
	options, err := tr.GetEnumOptions(kind)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cloth", "Plate"}, options)

	assert.ErrorIs(t, tr.SetValue(root, "x"), tree.ErrTypeMismatch)
}

func TestTree_Flags(t *testing.T) {
	tr, root := newArmorTree(t)

	flags, err := tr.AddElement(root, "Flags")
	require.NoError(t, err)

	enabled, err := tr.GetEnabledFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, enabled)

	require.NoError(t, tr.SetEnabledFlags(flags, []string{"Light", "Heavy"}))
	enabled, err = tr.GetEnabledFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heavy", "Light"}, enabled)

	v, err := tr.GetValue(flags)
	require.NoError(t, err)
	assert.Equal(t, "Heavy, Light", v)

	assert.Error(t, tr.SetEnabledFlags(flags, []string{"Shiny"}))

	require.NoError(t, tr.SetValue(flags, "Light"))
	enabled, err = tr.GetEnabledFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, []string{"Light"}, enabled)
}

func TestTree_LoadOrder(t *testing.T) {
	tr, _ := newArmorTree(t)

	lo, err := tr.LoadOrder("dawnguard.ESM")
	require.NoError(t, err)
	assert.Equal(t, 2, lo)

	_, err = tr.LoadOrder("Missing.esp")
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	tr, root := newArmorTree(t)

	name, err := tr.AddElement(root, "Name")
	require.NoError(t, err)
	require.NoError(t, tr.SetValue(name, "Steel Cuirass"))
	model, err := tr.AddElement(root, "Model")
	require.NoError(t, err)
	require.NoError(t, tr.SetValue(model, "0002ABCD"))
	flags, err := tr.AddElement(root, "Flags")
	require.NoError(t, err)
	require.NoError(t, tr.SetEnabledFlags(flags, []string{"Heavy"}))
	kw, err := tr.AddElement(root, "Keywords")
	require.NoError(t, err)
	item, err := tr.AddArrayItem(kw)
	require.NoError(t, err)
	require.NoError(t, tr.SetValue(item, "0001E718"))

	var buf bytes.Buffer
	require.NoError(t, tr.Encode(&buf))

	decoded, err := tree.Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"Cuirass"}, decoded.Records())
	want, err := tr.Snapshot()
	require.NoError(t, err)
	got, err := decoded.Snapshot()
	require.NoError(t, err)
	if diff := cmp.Diff(want.Records, got.Records); diff != "" {
		t.Errorf("records differ after round trip (-want +got):\n%s", diff)
	}

	h, err := decoded.Record("Cuirass")
	require.NoError(t, err)
	m, err := decoded.GetElement(h, "Model")
	require.NoError(t, err)
	u, err := decoded.GetUIntValue(m)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0002ABCD), u)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Invalid JSON", `{`},
		{"Unknown signature", `{"records": [{"name": "A", "signature": "NONE"}]}`},
		{"Unknown element", `{
			"definitions": {"X": {"valueType": "vtStruct", "elements": [{"name": "A", "valueType": "vtString"}]}},
			"records": [{"name": "R", "signature": "X", "elements": [{"name": "B", "value": "v"}]}]
		}`},
		{"Load order out of range", `{"files": [{"name": "Big.esp", "loadOrder": 256}]}`},
		{"Negative load order", `{"files": [{"name": "Neg.esp", "loadOrder": -1}]}`},
		{"Bad value", `{
			"definitions": {"X": {"valueType": "vtStruct", "elements": [{"name": "A", "valueType": "vtNumber", "smashType": "stInteger"}]}},
			"records": [{"name": "R", "signature": "X", "elements": [{"name": "A", "value": "ten"}]}]
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.Decode(bytes.NewBufferString(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestEncode_UnrepresentableValue(t *testing.T) {
	tr, root := newArmorTree(t)
	rating, err := tr.AddElement(root, "Rating")
	require.NoError(t, err)
	require.NoError(t, tr.SetFloatValue(rating, math.NaN()))

	var buf bytes.Buffer
	err = tr.Encode(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Cuirass\Rating`)
	assert.Zero(t, buf.Len())
}
