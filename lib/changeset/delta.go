package changeset

import "github.com/ether/sharedtree-go/lib/rev"

// DetachedNodeId names a detached subtree for the tree storage collaborator.
// It carries the same information as a ChangeAtomId but is the only id shape
// the storage side ever sees.
type DetachedNodeId struct {
	Major rev.RevisionTag
	Minor rev.ChangesetLocalId
}

func (id DetachedNodeId) String() string {
	return rev.ChangeAtomId{Revision: id.Major, LocalId: id.Minor}.String()
}

func DetachedNodeIdFromAtom(id rev.ChangeAtomId) DetachedNodeId {
	return DetachedNodeId{Major: id.Revision, Minor: id.LocalId}
}

func (id DetachedNodeId) AtomId() rev.ChangeAtomId {
	return rev.ChangeAtomId{Revision: id.Major, LocalId: id.Minor}
}

func CompareDetachedNodeIds(a, b DetachedNodeId) int {
	return rev.CompareAtomIds(a.AtomId(), b.AtomId())
}

// Delta is the derived, field-kind-independent instruction set applied to
// tree storage. It contains no field-kind identifiers.
type Delta struct {
	Fields     map[FieldKey]*FieldDelta
	Builds     []DetachedNodeBuild
	Destroys   []DetachedNodeDestroy
	Refreshers []DetachedNodeBuild
}

func (d *Delta) Empty() bool {
	return d == nil || (len(d.Fields) == 0 && len(d.Builds) == 0 &&
		len(d.Destroys) == 0 && len(d.Refreshers) == 0)
}

type FieldDelta struct {
	Local []DeltaMark
}

// DeltaMark describes the treatment of Count consecutive nodes in a field:
// attach of a detached subtree, detach into a detached slot, a scalar value
// overwrite, and/or nested modifications of the nodes' own fields.
type DeltaMark struct {
	Count  int
	Attach *DetachedNodeId
	Detach *DetachedNodeId
	Value  any
	Fields map[FieldKey]*FieldDelta
}

type DetachedNodeBuild struct {
	Id    DetachedNodeId
	Trees []TreeNode
}

type DetachedNodeDestroy struct {
	Id    DetachedNodeId
	Count int
}
