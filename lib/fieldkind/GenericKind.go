package fieldkind

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
)

// GenericKindIdentifier is the built-in kind used for fields whose concrete
// kind is not yet known, so documents can be edited before the schema
// stabilizes without losing changes.
const GenericKindIdentifier changeset.FieldKindIdentifier = "modular/generic"

// GenericChange can carry a single child's nested changeset, addressed by
// index 0.
type GenericChange struct {
	Child *changeset.NodeChangeset
}

type GenericHandler struct{}

func (GenericHandler) Compose(a, b changeset.FieldChangeset, composeChild ComposeChild) (changeset.FieldChangeset, error) {
	var ga, gb = asGeneric(a), asGeneric(b)
	var merged = composeChild(ga.Child, gb.Child)
	return GenericChange{Child: merged}, nil
}

func (GenericHandler) Invert(c changeset.FieldChangeset, isRollback bool, invertChild InvertChild) (changeset.FieldChangeset, error) {
	var g = asGeneric(c)
	return GenericChange{Child: invertChild(g.Child)}, nil
}

func (GenericHandler) Rebase(c, over changeset.FieldChangeset, rebaseChild RebaseChild) (changeset.FieldChangeset, error) {
	var gc, gover = asGeneric(c), asGeneric(over)
	var rebased = rebaseChild(gc.Child, gover.Child)
	if rebased.Empty() {
		return nil, nil
	}
	return GenericChange{Child: rebased}, nil
}

func (GenericHandler) IntoDelta(c changeset.FieldChangeset, deltaFromChild DeltaFromChild) (*changeset.FieldDelta, error) {
	var g = asGeneric(c)
	if g.Child.Empty() {
		return &changeset.FieldDelta{}, nil
	}
	return &changeset.FieldDelta{
		Local: []changeset.DeltaMark{{
			Count:  1,
			Fields: deltaFromChild(g.Child),
		}},
	}, nil
}

func (GenericHandler) IsEmpty(c changeset.FieldChangeset) bool {
	return asGeneric(c).Child.Empty()
}

func (GenericHandler) RelevantRemovedRoots(c changeset.FieldChangeset, fromChild RemovedRootsFromChild) []changeset.DetachedNodeId {
	var g = asGeneric(c)
	if g.Child.Empty() {
		return nil
	}
	return fromChild(g.Child)
}

func (GenericHandler) ChangeFromChild(index int, child *changeset.NodeChangeset) changeset.FieldChangeset {
	if index != 0 {
		panic(exception.NewUsageError("generic field changes only address the child at index 0"))
	}
	return GenericChange{Child: child}
}

// ChildOfGeneric extracts the index-0 child changeset of a generic change so
// the orchestrator can convert it onto a concrete kind's addressing.
func ChildOfGeneric(c changeset.FieldChangeset) *changeset.NodeChangeset {
	return asGeneric(c).Child
}

func asGeneric(c changeset.FieldChangeset) GenericChange {
	if c == nil {
		return GenericChange{}
	}
	return c.(GenericChange)
}
