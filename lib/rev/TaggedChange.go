package rev

// TaggedChange pairs a change value with the revision it is attributed to.
// Not-yet-sequenced local changes carry None.
type TaggedChange[T any] struct {
	Change   T
	Revision RevisionTag
}

func Tagged[T any](change T, revision RevisionTag) TaggedChange[T] {
	return TaggedChange[T]{
		Change:   change,
		Revision: revision,
	}
}

// RevisionInfo records one original edit that a changeset is composed of.
type RevisionInfo struct {
	Revision RevisionTag
	Rollback bool
}
