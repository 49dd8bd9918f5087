package fieldkind

import (
	"errors"
	"testing"

	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopComposeChild(a, b *changeset.NodeChangeset) *changeset.NodeChangeset {
	if a.Empty() {
		return b
	}
	return a
}

func identityInvertChild(c *changeset.NodeChangeset) *changeset.NodeChangeset {
	return c
}

func TestRegistryResolvesBuiltinKinds(t *testing.T) {
	var r = NewRegistry()

	handler, err := r.Resolve(GenericKindIdentifier)
	require.NoError(t, err)
	require.NotNil(t, handler)

	handler, err = r.Resolve(ValueKindIdentifier)
	require.NoError(t, err)
	require.NotNil(t, handler)
}

func TestRegistryFailsOnUnknownKind(t *testing.T) {
	var r = NewRegistry()

	var _, err = r.Resolve("no/such/kind")
	require.Error(t, err)

	var unknown *exception.UnknownFieldKindError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "no/such/kind", unknown.Kind)
}

func TestValueComposeChainsOverwrites(t *testing.T) {
	var h = ValueHandler{}
	var a = ValueChange{HasValue: true, Old: 0, New: 1}
	var b = ValueChange{HasValue: true, Old: 1, New: 2}

	composed, err := h.Compose(a, b, noopComposeChild)
	require.NoError(t, err)

	var v = composed.(ValueChange)
	assert.Equal(t, 0, v.Old)
	assert.Equal(t, 2, v.New)
}

func TestValueInvertSwapsOldAndNew(t *testing.T) {
	var h = ValueHandler{}

	inverted, err := h.Invert(ValueChange{HasValue: true, Old: "a", New: "b"}, false, identityInvertChild)
	require.NoError(t, err)

	var v = inverted.(ValueChange)
	assert.Equal(t, "b", v.Old)
	assert.Equal(t, "a", v.New)
}

func TestValueRebaseKeepsIntentOverConcurrentOverwrite(t *testing.T) {
	var h = ValueHandler{}
	var mine = ValueChange{HasValue: true, Old: 0, New: 5}
	var theirs = ValueChange{HasValue: true, Old: 0, New: 9}

	rebased, err := h.Rebase(mine, theirs, func(c, over *changeset.NodeChangeset) *changeset.NodeChangeset {
		return c
	})
	require.NoError(t, err)

	var v = rebased.(ValueChange)
	assert.Equal(t, 9, v.Old)
	assert.Equal(t, 5, v.New)
}

func TestValueIsEmpty(t *testing.T) {
	var h = ValueHandler{}
	assert.True(t, h.IsEmpty(ValueChange{}))
	assert.True(t, h.IsEmpty(ValueChange{HasValue: true, Old: 3, New: 3}))
	assert.False(t, h.IsEmpty(ValueChange{HasValue: true, Old: 3, New: 4}))
}

func TestValueIntoDeltaEmitsOverwriteMark(t *testing.T) {
	var h = ValueHandler{}

	fieldDelta, err := h.IntoDelta(ValueChange{HasValue: true, Old: 1, New: 2}, func(c *changeset.NodeChangeset) map[changeset.FieldKey]*changeset.FieldDelta {
		return nil
	})
	require.NoError(t, err)
	require.Len(t, fieldDelta.Local, 1)
	assert.Equal(t, 1, fieldDelta.Local[0].Count)
	assert.Equal(t, 2, fieldDelta.Local[0].Value)
}

func TestGenericCarriesChildAtIndexZero(t *testing.T) {
	var h = GenericHandler{}
	var child = &changeset.NodeChangeset{
		FieldChanges: changeset.FieldChangeMap{
			"x": {Kind: ValueKindIdentifier, Change: ValueChange{HasValue: true, Old: 1, New: 2}},
		},
	}

	var c = h.ChangeFromChild(0, child)
	assert.False(t, h.IsEmpty(c))
	assert.Equal(t, child, ChildOfGeneric(c))

	if !h.IsEmpty(h.ChangeFromChild(0, nil)) {
		t.Error("a generic change without a child must be empty")
	}
}

func TestGenericChangeFromChildRejectsNonZeroIndex(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a non-zero child index")
		}
	}()
	GenericHandler{}.ChangeFromChild(1, nil)
}

func TestGenericRebaseDropsEmptiedChild(t *testing.T) {
	var h = GenericHandler{}
	var c = h.ChangeFromChild(0, &changeset.NodeChangeset{
		FieldChanges: changeset.FieldChangeMap{"x": {Kind: ValueKindIdentifier}},
	})

	rebased, err := h.Rebase(c, h.ChangeFromChild(0, nil), func(child, over *changeset.NodeChangeset) *changeset.NodeChangeset {
		return nil // the child's target no longer exists
	})
	require.NoError(t, err)
	assert.Nil(t, rebased)
}
