package family

import (
	"testing"

	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/fieldkind"
	"github.com/ether/sharedtree-go/lib/rev"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireEqualChangesets(t *testing.T, want, got *changeset.ModularChangeset) {
	t.Helper()
	if !want.Equal(got) {
		t.Errorf("changesets differ:\n%s", cmp.Diff(want, got,
			cmp.AllowUnexported(changeset.AtomMap[[]changeset.TreeNode]{}, changeset.AtomMap[int]{})))
	}
}

func TestComposeNothingYieldsTheEmptyChangeset(t *testing.T) {
	var f = newTestFamily()

	composed, err := f.Compose(nil)
	require.NoError(t, err)
	require.True(t, composed.Empty())
}

func TestComposeDelegatesPairwisePerField(t *testing.T) {
	var f = newTestFamily()

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithValue("a", 0, 1), rev.NewRevisionTag()),
		rev.Tagged(changesetWithValue("a", 1, 2), rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	require.Contains(t, composed.FieldChanges, changeset.FieldKey("a"))
	var v = composed.FieldChanges["a"].Change.(fieldkind.ValueChange)
	assert.Equal(t, 0, v.Old)
	assert.Equal(t, 2, v.New)
}

func TestComposeTreatsUntouchedFieldsAsIdentity(t *testing.T) {
	var f = newTestFamily()

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithValue("a", 0, 1), rev.NewRevisionTag()),
		rev.Tagged(changesetWithValue("b", "x", "y"), rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	require.Len(t, composed.FieldChanges, 2)
	assert.Contains(t, composed.FieldChanges, changeset.FieldKey("a"))
	assert.Contains(t, composed.FieldChanges, changeset.FieldKey("b"))
}

func TestComposeWithNoOpIsIdentity(t *testing.T) {
	var f = newTestFamily()
	var r = rev.NewRevisionTag()
	var c = changesetWithValue("a", 0, 1)

	left, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changeset.NewEmpty(), rev.None),
		rev.Tagged(c, r),
	})
	require.NoError(t, err)

	right, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(c, r),
		rev.Tagged(changeset.NewEmpty(), rev.None),
	})
	require.NoError(t, err)

	requireEqualChangesets(t, left, right)
	require.Contains(t, left.FieldChanges, changeset.FieldKey("a"))
	assert.Equal(t, []rev.RevisionInfo{{Revision: r}}, left.Revisions)
}

func TestComposeIsAssociative(t *testing.T) {
	var f = newTestFamily()
	var ra = rev.NewRevisionTag()
	var rb = rev.NewRevisionTag()
	var rc = rev.NewRevisionTag()

	var a = changesetWithValue("a", 0, 1)
	a.Builds.Set(rev.ChangeAtomId{LocalId: 0}, []changeset.TreeNode{randomLeafNode()})
	var b = changesetWithValue("a", 1, 2)
	b.FieldChanges["b"] = valueFieldChange("x", "y")
	var c = changesetWithValue("b", "y", "z")
	c.Builds.Set(rev.ChangeAtomId{LocalId: 1}, []changeset.TreeNode{randomLeafNode()})

	ab, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(a, ra), rev.Tagged(b, rb),
	})
	require.NoError(t, err)
	left, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(ab, rev.None), rev.Tagged(c, rc),
	})
	require.NoError(t, err)

	bc, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(b, rb), rev.Tagged(c, rc),
	})
	require.NoError(t, err)
	right, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(a, ra), rev.Tagged(bc, rev.None),
	})
	require.NoError(t, err)

	requireEqualChangesets(t, left, right)
}

func TestComposeCancelsBuildAgainstLaterDestroy(t *testing.T) {
	var f = newTestFamily()
	var r = rev.NewRevisionTag()
	var id = rev.ChangeAtomId{Revision: r, LocalId: 0}

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithBuild(rev.ChangeAtomId{LocalId: 0}, leafNode(1)), r),
		rev.Tagged(changesetWithDestroy(id, 1), rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	assert.False(t, composed.Builds.Has(id))
	assert.False(t, composed.Destroys.Has(id))
}

func TestComposeKeepsDestroyThenRebuild(t *testing.T) {
	var f = newTestFamily()
	var r = rev.NewRevisionTag()
	var id = rev.ChangeAtomId{Revision: r, LocalId: 0}

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithDestroy(id, 1), rev.NewRevisionTag()),
		rev.Tagged(changesetWithBuild(id, leafNode(2)), rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	assert.True(t, composed.Destroys.Has(id))
	assert.True(t, composed.Builds.Has(id))
}

func TestComposeEarliestBuildWins(t *testing.T) {
	var f = newTestFamily()
	var r = rev.NewRevisionTag()
	var id = rev.ChangeAtomId{Revision: r, LocalId: 3}

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithBuild(id, leafNode("first")), r),
		rev.Tagged(changesetWithBuild(id, leafNode("resubmitted")), r),
	})
	require.NoError(t, err)

	trees, ok := composed.Builds.Get(id)
	require.True(t, ok)
	require.Len(t, trees, 1)
	assert.Equal(t, "first", trees[0].Value)
}

func TestComposeLatestRefresherWins(t *testing.T) {
	var f = newTestFamily()
	var id = rev.ChangeAtomId{Revision: rev.NewRevisionTag(), LocalId: 0}

	var stale = changeset.NewEmpty()
	stale.Refreshers.Set(id, []changeset.TreeNode{leafNode("stale")})
	var fresh = changeset.NewEmpty()
	fresh.Refreshers.Set(id, []changeset.TreeNode{leafNode("fresh")})

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(stale, rev.NewRevisionTag()),
		rev.Tagged(fresh, rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	trees, ok := composed.Refreshers.Get(id)
	require.True(t, ok)
	assert.Equal(t, "fresh", trees[0].Value)
}

func TestComposeBuildShadowsRefresher(t *testing.T) {
	var f = newTestFamily()
	var id = rev.ChangeAtomId{Revision: rev.NewRevisionTag(), LocalId: 0}

	var withRefresher = changeset.NewEmpty()
	withRefresher.Refreshers.Set(id, []changeset.TreeNode{leafNode("cached")})

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithBuild(id, leafNode("authoritative")), rev.NewRevisionTag()),
		rev.Tagged(withRefresher, rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	assert.False(t, composed.Refreshers.Has(id))
	trees, ok := composed.Builds.Get(id)
	require.True(t, ok)
	assert.Equal(t, "authoritative", trees[0].Value)
}

func TestComposeRetagsLocalBuildsWithTheInputRevision(t *testing.T) {
	var f = newTestFamily()
	var r = rev.NewRevisionTag()

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithBuild(rev.ChangeAtomId{LocalId: 2}, leafNode(1)), r),
	})
	require.NoError(t, err)

	assert.False(t, composed.Builds.Has(rev.ChangeAtomId{LocalId: 2}))
	assert.True(t, composed.Builds.Has(rev.ChangeAtomId{Revision: r, LocalId: 2}))
}

func TestComposeConcatenatesRevisionsInOrder(t *testing.T) {
	var f = newTestFamily()
	var ra = rev.NewRevisionTag()
	var rb = rev.NewRevisionTag()

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithValue("a", 0, 1), ra),
		rev.Tagged(changesetWithValue("a", 1, 2), rb),
	})
	require.NoError(t, err)

	require.Equal(t, []rev.RevisionInfo{{Revision: ra}, {Revision: rb}}, composed.Revisions)
}

func TestComposePrunesFieldsThatNetToNothing(t *testing.T) {
	var f = newTestFamily()

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(changesetWithValue("a", 0, 1), rev.NewRevisionTag()),
		rev.Tagged(changesetWithValue("a", 1, 0), rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	assert.NotContains(t, composed.FieldChanges, changeset.FieldKey("a"))
}

func TestComposeRecursesIntoChildNodes(t *testing.T) {
	var f = newTestFamily()

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(nestedValueChangeset("root", "name", "a", "b"), rev.NewRevisionTag()),
		rev.Tagged(nestedValueChangeset("root", "name", "b", "c"), rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	var outer = composed.FieldChanges["root"].Change.(fieldkind.ValueChange)
	require.NotNil(t, outer.Child)
	var inner = outer.Child.FieldChanges["name"].Change.(fieldkind.ValueChange)
	assert.Equal(t, "a", inner.Old)
	assert.Equal(t, "c", inner.New)
}

func TestComposeConvertsGenericAgainstConcrete(t *testing.T) {
	var f = newTestFamily()

	composed, err := f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(genericChildChangeset("root", "name", "a", "b"), rev.NewRevisionTag()),
		rev.Tagged(nestedValueChangeset("root", "name", "b", "c"), rev.NewRevisionTag()),
	})
	require.NoError(t, err)

	var fc = composed.FieldChanges["root"]
	require.Equal(t, fieldkind.ValueKindIdentifier, fc.Kind)
	var inner = fc.Change.(fieldkind.ValueChange).Child.FieldChanges["name"].Change.(fieldkind.ValueChange)
	assert.Equal(t, "a", inner.Old)
	assert.Equal(t, "c", inner.New)
}

func TestComposeFailsOnConflictingConcreteKinds(t *testing.T) {
	var f = newTestFamily()
	f.Kinds().Register(wipeKindIdentifier, wipeHandler{})

	var a = changesetWithValue("a", 0, 1)
	var b = changeset.NewEmpty()
	b.FieldChanges["a"] = changeset.FieldChange{Kind: wipeKindIdentifier, Change: wipeChange{Payload: "w"}}

	var _, err = f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(a, rev.NewRevisionTag()),
		rev.Tagged(b, rev.NewRevisionTag()),
	})
	require.Error(t, err)
}

func TestComposeFailsOnUnknownFieldKind(t *testing.T) {
	var f = newTestFamily()

	var a = changeset.NewEmpty()
	a.FieldChanges["a"] = changeset.FieldChange{Kind: "no/such/kind"}
	var b = changeset.NewEmpty()
	b.FieldChanges["a"] = changeset.FieldChange{Kind: "no/such/kind"}

	var _, err = f.Compose([]rev.TaggedChange[*changeset.ModularChangeset]{
		rev.Tagged(a, rev.NewRevisionTag()),
		rev.Tagged(b, rev.NewRevisionTag()),
	})
	require.Error(t, err)
}
