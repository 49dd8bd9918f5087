package family

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/rev"
)

// Invert produces a changeset that, composed after the original, restores
// the prior state.
//
// With isRollback false (an undo), no destroy entries are generated for the
// nodes the original built: those nodes simply stop existing locally. A
// rollback invert emits them, because a rollback of a not-yet-acknowledged
// edit must be applicable immediately, without acknowledgment semantics.
func (f *Family) Invert(tc rev.TaggedChange[*changeset.ModularChangeset], isRollback bool) (result *changeset.ModularChangeset, err error) {
	defer recoverError(&err)

	var c = tc.Change
	var out = changeset.NewEmpty()
	out.FieldChanges = f.invertFieldMap(c.FieldChanges, isRollback)
	out.MaxId = c.MaxId

	if isRollback {
		c.Builds.ForEach(func(id rev.ChangeAtomId, trees []changeset.TreeNode) {
			out.Destroys.Set(qualifyAtomId(id, tc.Revision), len(trees))
		})
	}

	c.Destroys.ForEach(func(id rev.ChangeAtomId, _ int) {
		var qualified = qualifyAtomId(id, tc.Revision)
		var trees, ok = c.Refreshers.Get(id)
		if !ok {
			trees, ok = c.Refreshers.Get(qualified)
		}
		if !ok {
			trees, ok = c.Builds.Get(id)
		}
		if !ok {
			// without cached content the destroyed subtree cannot be
			// reconstructed and the inverse would be unapplyable
			panic(exception.NewDetachedNodeNotFoundError(qualified.String()))
		}
		out.Builds.Set(qualified, trees)
	})

	// an inverse is not attributed to the original revision chain, its
	// Revisions list stays empty
	return out, nil
}

func (f *Family) invertFieldMap(fields changeset.FieldChangeMap, isRollback bool) changeset.FieldChangeMap {
	var invertChild = func(child *changeset.NodeChangeset) *changeset.NodeChangeset {
		if child.Empty() {
			return nil
		}
		var inverted = f.invertFieldMap(child.FieldChanges, isRollback)
		if len(inverted) == 0 {
			return nil
		}
		return &changeset.NodeChangeset{FieldChanges: inverted}
	}

	var out = make(changeset.FieldChangeMap, len(fields))
	for key, fc := range fields {
		var handler = f.mustResolve(fc.Kind)
		var inverted, err = handler.Invert(fc.Change, isRollback, invertChild)
		if err != nil {
			panic(err)
		}
		if !handler.IsEmpty(inverted) {
			out[key] = changeset.FieldChange{Kind: fc.Kind, Change: inverted}
		}
	}
	return out
}
