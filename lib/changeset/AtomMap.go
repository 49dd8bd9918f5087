package changeset

import (
	"github.com/ether/sharedtree-go/lib/rev"
	"github.com/ether/sharedtree-go/lib/utils"
)

// AtomMap is the two-level mapping used for builds, destroys and refreshers:
// first by owning revision (rev.None meaning "local"), then by local id.
// Algorithms never mutate a map they did not create; Clone produces an
// independent copy that can be edited without corrupting inputs still
// referenced by other pending commits.
type AtomMap[T any] struct {
	entries map[rev.RevisionTag]map[rev.ChangesetLocalId]T
}

func NewAtomMap[T any]() *AtomMap[T] {
	return &AtomMap[T]{
		entries: make(map[rev.RevisionTag]map[rev.ChangesetLocalId]T),
	}
}

func (m *AtomMap[T]) Get(id rev.ChangeAtomId) (T, bool) {
	var zero T
	if m == nil {
		return zero, false
	}
	var inner, ok = m.entries[id.Revision]
	if !ok {
		return zero, false
	}
	v, ok := inner[id.LocalId]
	return v, ok
}

func (m *AtomMap[T]) Has(id rev.ChangeAtomId) bool {
	var _, ok = m.Get(id)
	return ok
}

func (m *AtomMap[T]) Set(id rev.ChangeAtomId, value T) {
	var inner, ok = m.entries[id.Revision]
	if !ok {
		inner = make(map[rev.ChangesetLocalId]T)
		m.entries[id.Revision] = inner
	}
	inner[id.LocalId] = value
}

func (m *AtomMap[T]) Delete(id rev.ChangeAtomId) {
	var inner, ok = m.entries[id.Revision]
	if !ok {
		return
	}
	delete(inner, id.LocalId)
	if len(inner) == 0 {
		delete(m.entries, id.Revision)
	}
}

func (m *AtomMap[T]) Len() int {
	if m == nil {
		return 0
	}
	var n = 0
	for _, inner := range m.entries {
		n += len(inner)
	}
	return n
}

func (m *AtomMap[T]) Clone() *AtomMap[T] {
	var out = NewAtomMap[T]()
	if m == nil {
		return out
	}
	for revision, inner := range m.entries {
		var copied = make(map[rev.ChangesetLocalId]T, len(inner))
		for localId, v := range inner {
			copied[localId] = v
		}
		out.entries[revision] = copied
	}
	return out
}

// ForEach visits entries ordered by revision, then local id, so that
// derived outputs (deltas, merged maps) are deterministic.
func (m *AtomMap[T]) ForEach(f func(id rev.ChangeAtomId, value T)) {
	if m == nil {
		return
	}
	var revisions = utils.SortedKeysFunc(m.entries, rev.CompareRevisionTags)
	for _, revision := range revisions {
		var inner = m.entries[revision]
		for _, localId := range utils.SortedKeys(inner) {
			f(rev.ChangeAtomId{Revision: revision, LocalId: localId}, inner[localId])
		}
	}
}

// EqualAtomMaps reports structural equality, comparing values with eq.
func EqualAtomMaps[T any](a, b *AtomMap[T], eq func(x, y T) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	var equal = true
	a.ForEach(func(id rev.ChangeAtomId, value T) {
		other, ok := b.Get(id)
		if !ok || !eq(value, other) {
			equal = false
		}
	})
	return equal
}
