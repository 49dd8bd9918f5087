package family

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/rev"
)

// Rebase produces the equivalent of change as if it had been authored after
// over was already applied, preserving change's intent under concurrent
// edits. A field whose remaining effect is nothing (e.g. its target was
// concurrently deleted) is dropped, which is an ordinary outcome.
func (f *Family) Rebase(change *changeset.ModularChangeset, over rev.TaggedChange[*changeset.ModularChangeset], metadata *rev.RevisionMetadata) (result *changeset.ModularChangeset, err error) {
	defer recoverError(&err)
	_ = metadata // reserved for field kinds that order concurrent revisions

	var out = change.ShallowClone()
	out.FieldChanges = f.rebaseFieldMap(change.FieldChanges, over.Change.FieldChanges)

	// an existence constraint on a node the concurrent change destroyed
	// turns the whole changeset into a clean failure
	for id := range change.Constraints {
		if over.Change.Destroys.Has(id) || over.Change.Destroys.Has(qualifyAtomId(id, over.Revision)) {
			out.ConstraintViolated = true
			break
		}
		if id.Revision == over.Revision &&
			over.Change.Destroys.Has(rev.ChangeAtomId{LocalId: id.LocalId}) {
			out.ConstraintViolated = true
			break
		}
	}
	return out, nil
}

func (f *Family) rebaseFieldMap(fields, overFields changeset.FieldChangeMap) changeset.FieldChangeMap {
	var rebaseChild = func(child, overChild *changeset.NodeChangeset) *changeset.NodeChangeset {
		if child.Empty() {
			return nil
		}
		if overChild.Empty() {
			return child
		}
		var rebased = f.rebaseFieldMap(child.FieldChanges, overChild.FieldChanges)
		if len(rebased) == 0 {
			return nil
		}
		return &changeset.NodeChangeset{FieldChanges: rebased}
	}

	var out = make(changeset.FieldChangeMap, len(fields))
	for key, fc := range fields {
		var overFc, touched = overFields[key]
		if !touched {
			out[key] = fc
			continue
		}
		var kind, handler, c, overC = f.alignKinds(fc, overFc)
		var rebased, err = handler.Rebase(c, overC, rebaseChild)
		if err != nil {
			panic(err)
		}
		if rebased == nil {
			// no remaining change for this field
			continue
		}
		if !handler.IsEmpty(rebased) {
			out[key] = changeset.FieldChange{Kind: kind, Change: rebased}
		}
	}
	return out
}
