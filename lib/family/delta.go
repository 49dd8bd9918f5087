package family

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/rev"
)

// IntoDelta derives the field-kind-independent instruction set the tree
// storage collaborator consumes. Build, destroy and refresher entries are
// global rather than field-scoped and bypass field-kind dispatch.
func (f *Family) IntoDelta(tc rev.TaggedChange[*changeset.ModularChangeset]) (result *changeset.Delta, err error) {
	defer recoverError(&err)

	var c = tc.Change
	var out = &changeset.Delta{}
	if c.ConstraintViolated {
		// a violated existence constraint makes the whole edit a clean no-op
		return out, nil
	}

	out.Fields = f.deltaFromFieldMap(c.FieldChanges)

	c.Builds.ForEach(func(id rev.ChangeAtomId, trees []changeset.TreeNode) {
		out.Builds = append(out.Builds, changeset.DetachedNodeBuild{
			Id:    changeset.DetachedNodeIdFromAtom(qualifyAtomId(id, tc.Revision)),
			Trees: trees,
		})
	})
	c.Destroys.ForEach(func(id rev.ChangeAtomId, count int) {
		out.Destroys = append(out.Destroys, changeset.DetachedNodeDestroy{
			Id:    changeset.DetachedNodeIdFromAtom(qualifyAtomId(id, tc.Revision)),
			Count: count,
		})
	})
	c.Refreshers.ForEach(func(id rev.ChangeAtomId, trees []changeset.TreeNode) {
		out.Refreshers = append(out.Refreshers, changeset.DetachedNodeBuild{
			Id:    changeset.DetachedNodeIdFromAtom(qualifyAtomId(id, tc.Revision)),
			Trees: trees,
		})
	})
	return out, nil
}

func (f *Family) deltaFromFieldMap(fields changeset.FieldChangeMap) map[changeset.FieldKey]*changeset.FieldDelta {
	if len(fields) == 0 {
		return nil
	}

	var deltaFromChild = func(child *changeset.NodeChangeset) map[changeset.FieldKey]*changeset.FieldDelta {
		if child.Empty() {
			return nil
		}
		return f.deltaFromFieldMap(child.FieldChanges)
	}

	var out = make(map[changeset.FieldKey]*changeset.FieldDelta, len(fields))
	for key, fc := range fields {
		var handler = f.mustResolve(fc.Kind)
		var fieldDelta, err = handler.IntoDelta(fc.Change, deltaFromChild)
		if err != nil {
			panic(err)
		}
		if fieldDelta != nil && len(fieldDelta.Local) > 0 {
			out[key] = fieldDelta
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
