package family

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/rev"
)

// Compose returns one changeset with the same net effect as applying the
// given changes in left-to-right order. Composing zero changes, or changes
// that net to nothing, yields the canonical empty changeset.
func (f *Family) Compose(changes []rev.TaggedChange[*changeset.ModularChangeset]) (result *changeset.ModularChangeset, err error) {
	defer recoverError(&err)

	var acc = changeset.NewEmpty()
	if len(changes) == 0 {
		return acc, nil
	}
	f.logger.Debugw("composing changesets", "count", len(changes))

	for _, tc := range changes {
		acc = f.composePair(acc, tc)
	}

	// builds are authoritative for content that is being actively
	// constructed, so they shadow any refresher for the same atom id
	var shadowed = make([]rev.ChangeAtomId, 0)
	acc.Refreshers.ForEach(func(id rev.ChangeAtomId, _ []changeset.TreeNode) {
		if acc.Builds.Has(id) {
			shadowed = append(shadowed, id)
		}
	})
	for _, id := range shadowed {
		acc.Refreshers.Delete(id)
	}

	return acc, nil
}

func (f *Family) composePair(acc *changeset.ModularChangeset, tc rev.TaggedChange[*changeset.ModularChangeset]) *changeset.ModularChangeset {
	var next = tc.Change
	var out = &changeset.ModularChangeset{
		FieldChanges: f.composeFieldMaps(acc.FieldChanges, next.FieldChanges),
		Builds:       acc.Builds.Clone(),
		Destroys:     acc.Destroys.Clone(),
		Refreshers:   acc.Refreshers.Clone(),
		MaxId:        max(acc.MaxId, next.MaxId),
	}

	// destroys first: a destroy of what an earlier input built elides both
	// entries, the content was never visible to anyone
	next.Destroys.ForEach(func(id rev.ChangeAtomId, count int) {
		id = qualifyAtomId(id, tc.Revision)
		if out.Builds.Has(id) {
			out.Builds.Delete(id)
			return
		}
		out.Destroys.Set(id, count)
	})

	next.Builds.ForEach(func(id rev.ChangeAtomId, trees []changeset.TreeNode) {
		id = qualifyAtomId(id, tc.Revision)
		if out.Builds.Has(id) {
			// earliest build wins, later duplicates come from redundant
			// resubmission
			f.logger.Debugw("dropping duplicate build", "id", id.String())
			return
		}
		out.Builds.Set(id, trees)
	})

	// most recent cached content wins
	next.Refreshers.ForEach(func(id rev.ChangeAtomId, trees []changeset.TreeNode) {
		id = qualifyAtomId(id, tc.Revision)
		out.Refreshers.Set(id, trees)
	})

	out.Revisions = append(out.Revisions, acc.Revisions...)
	if len(next.Revisions) > 0 {
		out.Revisions = append(out.Revisions, next.Revisions...)
	} else if !tc.Revision.IsNone() {
		out.Revisions = append(out.Revisions, rev.RevisionInfo{Revision: tc.Revision})
	}

	if acc.Constraints != nil || next.Constraints != nil {
		out.Constraints = make(map[rev.ChangeAtomId]struct{})
		for id := range acc.Constraints {
			out.Constraints[id] = struct{}{}
		}
		for id := range next.Constraints {
			out.Constraints[qualifyAtomId(id, tc.Revision)] = struct{}{}
		}
	}
	out.ConstraintViolated = acc.ConstraintViolated || next.ConstraintViolated

	return out
}

// composeFieldMaps merges the field changes of two changesets. Fields
// touched by only one side pass through; fields touched by both delegate to
// the field kind's compose. Fields whose composed change reports empty are
// pruned.
func (f *Family) composeFieldMaps(a, b changeset.FieldChangeMap) changeset.FieldChangeMap {
	var out = make(changeset.FieldChangeMap)
	for key, fa := range a {
		var fb, both = b[key]
		if !both {
			out[key] = fa
			continue
		}
		var kind, handler, ca, cb = f.alignKinds(fa, fb)
		var composed, err = handler.Compose(ca, cb, f.composeChild)
		if err != nil {
			panic(err)
		}
		if !handler.IsEmpty(composed) {
			out[key] = changeset.FieldChange{Kind: kind, Change: composed}
		}
	}
	for key, fb := range b {
		if _, both := a[key]; !both {
			out[key] = fb
		}
	}
	return out
}

func (f *Family) composeChild(a, b *changeset.NodeChangeset) *changeset.NodeChangeset {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	var merged = f.composeFieldMaps(a.FieldChanges, b.FieldChanges)
	if len(merged) == 0 {
		return nil
	}
	return &changeset.NodeChangeset{FieldChanges: merged}
}
