package fieldkind

import (
	"reflect"

	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
)

// ValueKindIdentifier is the built-in overwrite-a-single-value kind, the
// minimal concrete kind shipped with the registry.
const ValueKindIdentifier changeset.FieldKindIdentifier = "modular/value"

type ValueChange struct {
	// HasValue distinguishes "no value overwrite" (a pure child
	// modification) from an overwrite to nil.
	HasValue bool
	Old      any
	New      any
	Child    *changeset.NodeChangeset
}

type ValueHandler struct{}

func (ValueHandler) Compose(a, b changeset.FieldChangeset, composeChild ComposeChild) (changeset.FieldChangeset, error) {
	var va, vb = asValue(a), asValue(b)
	var out = ValueChange{Child: composeChild(va.Child, vb.Child)}
	switch {
	case va.HasValue && vb.HasValue:
		out.HasValue = true
		out.Old = va.Old
		out.New = vb.New
	case va.HasValue:
		out.HasValue = true
		out.Old = va.Old
		out.New = va.New
	case vb.HasValue:
		out.HasValue = true
		out.Old = vb.Old
		out.New = vb.New
	}
	return out, nil
}

func (ValueHandler) Invert(c changeset.FieldChangeset, isRollback bool, invertChild InvertChild) (changeset.FieldChangeset, error) {
	var v = asValue(c)
	return ValueChange{
		HasValue: v.HasValue,
		Old:      v.New,
		New:      v.Old,
		Child:    invertChild(v.Child),
	}, nil
}

func (ValueHandler) Rebase(c, over changeset.FieldChangeset, rebaseChild RebaseChild) (changeset.FieldChangeset, error) {
	var vc, vover = asValue(c), asValue(over)
	var out = ValueChange{Child: rebaseChild(vc.Child, vover.Child)}
	if vc.HasValue {
		out.HasValue = true
		out.New = vc.New
		// the rebased change now overwrites whatever the concurrent edit
		// left behind
		if vover.HasValue {
			out.Old = vover.New
		} else {
			out.Old = vc.Old
		}
	}
	if !out.HasValue && out.Child.Empty() {
		return nil, nil
	}
	return out, nil
}

func (ValueHandler) IntoDelta(c changeset.FieldChangeset, deltaFromChild DeltaFromChild) (*changeset.FieldDelta, error) {
	var v = asValue(c)
	var mark = changeset.DeltaMark{Count: 1}
	if v.HasValue {
		mark.Value = v.New
	}
	if !v.Child.Empty() {
		mark.Fields = deltaFromChild(v.Child)
	}
	return &changeset.FieldDelta{Local: []changeset.DeltaMark{mark}}, nil
}

func (ValueHandler) IsEmpty(c changeset.FieldChangeset) bool {
	var v = asValue(c)
	if v.HasValue && !reflect.DeepEqual(v.Old, v.New) {
		return false
	}
	return v.Child.Empty()
}

func (ValueHandler) RelevantRemovedRoots(c changeset.FieldChangeset, fromChild RemovedRootsFromChild) []changeset.DetachedNodeId {
	var v = asValue(c)
	if v.Child.Empty() {
		return nil
	}
	return fromChild(v.Child)
}

func (ValueHandler) ChangeFromChild(index int, child *changeset.NodeChangeset) changeset.FieldChangeset {
	if index != 0 {
		panic(exception.NewUsageError("value fields hold a single node at index 0"))
	}
	return ValueChange{Child: child}
}

func asValue(c changeset.FieldChangeset) ValueChange {
	if c == nil {
		return ValueChange{}
	}
	return c.(ValueChange)
}
