package rev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneIsTheLocalRevision(t *testing.T) {
	require.True(t, None.IsNone())
	require.Equal(t, "local", None.String())

	var tag = NewRevisionTag()
	require.False(t, tag.IsNone())
	if tag == None {
		t.Error("fresh revision tags must not equal None")
	}
}

func TestAtomIdEquality(t *testing.T) {
	var r1 = NewRevisionTag()
	var r2 = NewRevisionTag()

	assert.Equal(t, ChangeAtomId{Revision: r1, LocalId: 3}, ChangeAtomId{Revision: r1, LocalId: 3})
	assert.NotEqual(t, ChangeAtomId{Revision: r1, LocalId: 3}, ChangeAtomId{Revision: r1, LocalId: 4})
	assert.NotEqual(t, ChangeAtomId{Revision: r1, LocalId: 3}, ChangeAtomId{Revision: r2, LocalId: 3})
}

func TestCompareAtomIdsOrdersByRevisionThenLocalId(t *testing.T) {
	var r1 = NewRevisionTag()
	var r2 = NewRevisionTag()
	if CompareRevisionTags(r1, r2) > 0 {
		r1, r2 = r2, r1
	}

	require.Negative(t, CompareAtomIds(ChangeAtomId{Revision: r1, LocalId: 9}, ChangeAtomId{Revision: r2, LocalId: 0}))
	require.Negative(t, CompareAtomIds(ChangeAtomId{Revision: r1, LocalId: 1}, ChangeAtomId{Revision: r1, LocalId: 2}))
	require.Zero(t, CompareAtomIds(ChangeAtomId{Revision: r1, LocalId: 1}, ChangeAtomId{Revision: r1, LocalId: 1}))
}

func TestRevisionMetadataLookups(t *testing.T) {
	var r1 = NewRevisionTag()
	var r2 = NewRevisionTag()
	var metadata = NewRevisionMetadata([]RevisionInfo{
		{Revision: r1},
		{Revision: r2, Rollback: true},
	})

	require.Equal(t, 2, metadata.Len())

	var i, ok = metadata.IndexOf(r2)
	require.True(t, ok)
	assert.Equal(t, 1, i)

	tag, ok := metadata.TagAt(0)
	require.True(t, ok)
	assert.Equal(t, r1, tag)

	_, ok = metadata.TagAt(5)
	assert.False(t, ok)

	_, ok = metadata.IndexOf(NewRevisionTag())
	assert.False(t, ok)

	assert.True(t, metadata.IsRollback(r2))
	assert.False(t, metadata.IsRollback(r1))
}
