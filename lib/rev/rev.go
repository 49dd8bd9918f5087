package rev

import (
	"bytes"
	"strconv"

	"github.com/google/uuid"
)

// RevisionTag identifies one committed edit. The zero value (None) stands for
// the local, not-yet-assigned revision of changes that have not been
// sequenced yet.
type RevisionTag uuid.UUID

var None = RevisionTag{}

func NewRevisionTag() RevisionTag {
	return RevisionTag(uuid.New())
}

func (t RevisionTag) IsNone() bool {
	return t == None
}

func (t RevisionTag) String() string {
	if t.IsNone() {
		return "local"
	}
	return uuid.UUID(t).String()
}

func CompareRevisionTags(a, b RevisionTag) int {
	return bytes.Compare(a[:], b[:])
}

// ChangesetLocalId is a small integer unique within one revision, naming a
// node created, destroyed or detached by that revision.
type ChangesetLocalId int32

// ChangeAtomId stably names a transient entity (a created node, a detached
// subtree) across revisions. Two atom ids are equal iff both components
// match.
type ChangeAtomId struct {
	Revision RevisionTag
	LocalId  ChangesetLocalId
}

func (id ChangeAtomId) String() string {
	return id.Revision.String() + "/" + strconv.FormatInt(int64(id.LocalId), 10)
}

func CompareAtomIds(a, b ChangeAtomId) int {
	if c := CompareRevisionTags(a.Revision, b.Revision); c != 0 {
		return c
	}
	return int(a.LocalId) - int(b.LocalId)
}
