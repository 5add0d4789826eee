package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchySnapshotRoundTrip(t *testing.T) {
	e := ids(4)
	labels := map[uuid.UUID]string{e[0]: "body", e[1]: "arm", e[2]: "hand", e[3]: ""}
	h := NewHierarchy()
	require.NoError(t, h.SetParent(e[2], e[1]))
	require.NoError(t, h.SetParent(e[1], e[0]))
	require.NoError(t, h.SetParent(e[3], e[0]))

	snap := SnapshotHierarchy(h, labels)
	assert.Equal(t, []HierarchyLink{
		{Child: "hand", Parent: "arm"},
		{Child: "arm", Parent: "body"},
	}, snap.Links)

	data, err := snap.MarshalTOML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[link]]")

	decoded, err := UnmarshalHierarchyTOML(data)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)

	// apply onto fresh entities carrying the same labels
	f := ids(3)
	restored := NewHierarchy()
	require.NoError(t, decoded.Apply(restored, map[string]uuid.UUID{"body": f[0], "arm": f[1], "hand": f[2]}))
	assert.Equal(t, []uuid.UUID{f[1]}, restored.Children(f[0]))
	assert.Equal(t, []uuid.UUID{f[2]}, restored.Children(f[1]))
}

func TestHierarchySnapshotApplyErrors(t *testing.T) {
	e := ids(2)
	snap := HierarchySnapshot{Links: []HierarchyLink{{Child: "a", Parent: "b"}, {Child: "b", Parent: "ghost"}}}
	h := NewHierarchy()

	err := snap.Apply(h, map[string]uuid.UUID{"a": e[0], "b": e[1]})
	assert.ErrorIs(t, err, common.ErrUnknownLabel)
	assert.Zero(t, h.Len())

	cyclic := HierarchySnapshot{Links: []HierarchyLink{{Child: "a", Parent: "b"}, {Child: "b", Parent: "a"}}}
	err = cyclic.Apply(h, map[string]uuid.UUID{"a": e[0], "b": e[1]})
	assert.ErrorIs(t, err, common.ErrCyclicHierarchy)
	assert.Zero(t, h.Len())
}

func TestHierarchySnapshotApplyIsAllOrNothing(t *testing.T) {
	e := ids(4)
	h := NewHierarchy()
	require.NoError(t, h.SetParent(e[3], e[0]))

	// the first two links apply cleanly, the third closes a cycle
	snap := HierarchySnapshot{Links: []HierarchyLink{
		{Child: "b", Parent: "a"},
		{Child: "c", Parent: "b"},
		{Child: "a", Parent: "c"},
	}}
	err := snap.Apply(h, map[string]uuid.UUID{"a": e[0], "b": e[1], "c": e[2], "d": e[3]})
	assert.ErrorIs(t, err, common.ErrCyclicHierarchy)

	_, ok := h.Parent(e[1])
	assert.False(t, ok)
	_, ok = h.Parent(e[2])
	assert.False(t, ok)
	assert.Equal(t, []uuid.UUID{e[3]}, h.Children(e[0]))
	assert.Equal(t, 1, h.Len())
	assertConsistent(t, h)

	// a clean snapshot still lands, keeping the existing link
	require.NoError(t, HierarchySnapshot{Links: snap.Links[:2]}.Apply(h, map[string]uuid.UUID{"a": e[0], "b": e[1], "c": e[2]}))
	assert.Equal(t, []uuid.UUID{e[3], e[1]}, h.Children(e[0]))
	assertConsistent(t, h)
}

func TestHierarchyClone(t *testing.T) {
	e := ids(3)
	h := NewHierarchy()
	require.NoError(t, h.SetParent(e[1], e[0]))

	c := h.Clone()
	require.NoError(t, c.SetParent(e[2], e[0]))
	c.RemoveParent(e[1])

	assert.Equal(t, []uuid.UUID{e[1]}, h.Children(e[0]))
	assert.Equal(t, []uuid.UUID{e[2]}, c.Children(e[0]))
	assertConsistent(t, h)
	assertConsistent(t, c)
}

func TestUnmarshalHierarchyTOMLInvalid(t *testing.T) {
	_, err := UnmarshalHierarchyTOML([]byte("link = 3 = 4"))
	assert.Error(t, err)
}
