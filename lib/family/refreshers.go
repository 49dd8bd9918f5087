package family

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/rev"
)

// DetachedNodeLookup fetches a copy of a detached subtree from tree storage.
// The second return is false when no such detached node exists.
type DetachedNodeLookup func(id changeset.DetachedNodeId) ([]changeset.TreeNode, bool)

// RelevantRemovedRoots reports which previously-removed subtrees the change
// still refers to (e.g. a move-in of a removed node), so a consumer knows
// which refreshers must be kept alive.
func (f *Family) RelevantRemovedRoots(tc rev.TaggedChange[*changeset.ModularChangeset]) (roots []changeset.DetachedNodeId, err error) {
	defer recoverError(&err)
	return f.removedRootsFromFieldMap(tc.Change.FieldChanges, tc.Revision), nil
}

func (f *Family) removedRootsFromFieldMap(fields changeset.FieldChangeMap, defaultRevision rev.RevisionTag) []changeset.DetachedNodeId {
	var fromChild = func(child *changeset.NodeChangeset) []changeset.DetachedNodeId {
		if child.Empty() {
			return nil
		}
		return f.removedRootsFromFieldMap(child.FieldChanges, defaultRevision)
	}

	var seen = make(map[changeset.DetachedNodeId]struct{})
	var out = make([]changeset.DetachedNodeId, 0)
	for _, key := range fields.SortedKeys() {
		var fc = fields[key]
		var handler = f.mustResolve(fc.Kind)
		for _, id := range handler.RelevantRemovedRoots(fc.Change, fromChild) {
			// a handler may report an id without a revision component; it
			// then defaults to the revision the field is attributed to
			if id.Major.IsNone() {
				id.Major = defaultRevision
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// UpdateRefreshers rebuilds the change's refresher entries against the
// currently-relevant id set: entries no longer relevant are dropped, entries
// still relevant are kept, and any relevant id missing from both builds and
// refreshers is fetched through lookup. A relevant id that cannot be looked
// up is an error, since an un-refreshable reference would make a future
// invert impossible.
func (f *Family) UpdateRefreshers(change *changeset.ModularChangeset, lookup DetachedNodeLookup, relevant []changeset.DetachedNodeId) (result *changeset.ModularChangeset, err error) {
	defer recoverError(&err)

	var out = change.ShallowClone()
	out.Refreshers = changeset.NewAtomMap[[]changeset.TreeNode]()

	for _, did := range relevant {
		var id = did.AtomId()
		if out.Builds.Has(id) {
			// content being actively constructed is authoritative
			continue
		}
		if trees, ok := change.Refreshers.Get(id); ok {
			out.Refreshers.Set(id, trees)
			continue
		}
		var trees, ok = lookup(did)
		if !ok {
			return nil, exception.NewDetachedNodeNotFoundError(did.String())
		}
		out.Refreshers.Set(id, trees)
	}
	return out, nil
}
