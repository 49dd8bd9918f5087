package replacer

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/rev"
)

// Replacer rewrites revision identity when a batch of changes must be
// treated as authored under one new revision, e.g. during resubmission. It
// guarantees a bijection from the union of old (revision, localId) pairs
// onto (newRevision, localId) pairs: an old local id is kept when free
// under the new revision and a fresh one is minted otherwise.
type Replacer struct {
	newRevision rev.RevisionTag
	old         map[rev.RevisionTag]struct{}
	// revisions already queried via IsOldRevision and found not old; the
	// remapping policy must be decided before first use
	observedNotOld map[rev.RevisionTag]struct{}
	cache          map[rev.ChangeAtomId]rev.ChangeAtomId
	usedLocalIds   map[rev.ChangesetLocalId]struct{}
	nextLocalId    rev.ChangesetLocalId
}

// New creates a replacer targeting newRevision. maxId is the highest local
// id already allocated under the new revision; minted ids start above it.
func New(newRevision rev.RevisionTag, maxId rev.ChangesetLocalId) *Replacer {
	return &Replacer{
		newRevision:    newRevision,
		old:            make(map[rev.RevisionTag]struct{}),
		observedNotOld: make(map[rev.RevisionTag]struct{}),
		cache:          make(map[rev.ChangeAtomId]rev.ChangeAtomId),
		usedLocalIds:   make(map[rev.ChangesetLocalId]struct{}),
		nextLocalId:    maxId + 1,
	}
}

func (r *Replacer) NewRevision() rev.RevisionTag {
	return r.newRevision
}

// AddOldRevision marks tag for remapping. It fails if the tag was already
// observed as definitively not old.
func (r *Replacer) AddOldRevision(tag rev.RevisionTag) error {
	if _, seen := r.observedNotOld[tag]; seen {
		return exception.NewUsageError(
			"revision '" + tag.String() + "' was already classified as not old")
	}
	r.old[tag] = struct{}{}
	return nil
}

func (r *Replacer) IsOldRevision(tag rev.RevisionTag) bool {
	if _, ok := r.old[tag]; ok {
		return true
	}
	r.observedNotOld[tag] = struct{}{}
	return false
}

// GetUpdatedAtomId remaps id under the new revision. Ids whose revision is
// not old pass through unchanged; repeated calls with the same input always
// return the same output.
func (r *Replacer) GetUpdatedAtomId(id rev.ChangeAtomId) rev.ChangeAtomId {
	if !r.IsOldRevision(id.Revision) {
		return id
	}
	if updated, ok := r.cache[id]; ok {
		return updated
	}

	var localId = id.LocalId
	if _, taken := r.usedLocalIds[localId]; taken {
		localId = r.mintLocalId()
	}
	r.usedLocalIds[localId] = struct{}{}
	if localId >= r.nextLocalId {
		r.nextLocalId = localId + 1
	}

	var updated = rev.ChangeAtomId{Revision: r.newRevision, LocalId: localId}
	r.cache[id] = updated
	return updated
}

func (r *Replacer) mintLocalId() rev.ChangesetLocalId {
	for {
		var candidate = r.nextLocalId
		r.nextLocalId++
		if _, taken := r.usedLocalIds[candidate]; !taken {
			return candidate
		}
	}
}

// UpdateChangeset rewrites every atom id reference of c that belongs to an
// old revision, and collapses its provenance onto the new revision.
func (r *Replacer) UpdateChangeset(c *changeset.ModularChangeset) *changeset.ModularChangeset {
	var out = c.ShallowClone()

	out.Builds = remapAtomMap(r, c.Builds)
	out.Destroys = remapAtomMap(r, c.Destroys)
	out.Refreshers = remapAtomMap(r, c.Refreshers)

	if c.Constraints != nil {
		out.Constraints = make(map[rev.ChangeAtomId]struct{}, len(c.Constraints))
		for id := range c.Constraints {
			out.Constraints[r.GetUpdatedAtomId(id)] = struct{}{}
		}
	}

	out.Revisions = []rev.RevisionInfo{{Revision: r.newRevision}}
	if r.nextLocalId-1 > out.MaxId {
		out.MaxId = r.nextLocalId - 1
	}
	return out
}

func remapAtomMap[T any](r *Replacer, m *changeset.AtomMap[T]) *changeset.AtomMap[T] {
	var out = changeset.NewAtomMap[T]()
	m.ForEach(func(id rev.ChangeAtomId, value T) {
		out.Set(r.GetUpdatedAtomId(id), value)
	})
	return out
}
