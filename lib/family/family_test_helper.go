package family

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/fieldkind"
	"github.com/ether/sharedtree-go/lib/rev"
	"go.uber.org/zap"
)

func newTestFamily() *Family {
	return New(fieldkind.NewRegistry(), zap.NewNop().Sugar())
}

func valueFieldChange(old, new any) changeset.FieldChange {
	return changeset.FieldChange{
		Kind:   fieldkind.ValueKindIdentifier,
		Change: fieldkind.ValueChange{HasValue: true, Old: old, New: new},
	}
}

func changesetWithValue(key changeset.FieldKey, old, new any) *changeset.ModularChangeset {
	var c = changeset.NewEmpty()
	c.FieldChanges[key] = valueFieldChange(old, new)
	return c
}

func changesetWithBuild(id rev.ChangeAtomId, trees ...changeset.TreeNode) *changeset.ModularChangeset {
	var c = changeset.NewEmpty()
	c.Builds.Set(id, trees)
	c.MaxId = max(c.MaxId, id.LocalId)
	return c
}

func changesetWithDestroy(id rev.ChangeAtomId, count int) *changeset.ModularChangeset {
	var c = changeset.NewEmpty()
	c.Destroys.Set(id, count)
	return c
}

func leafNode(value any) changeset.TreeNode {
	return changeset.TreeNode{Type: "leaf", Value: value}
}

func randomLeafNode() changeset.TreeNode {
	return leafNode(gofakeit.Word())
}

// nestedValueChangeset targets a grandchild value through two levels of
// node changesets.
func nestedValueChangeset(outer, inner changeset.FieldKey, old, new any) *changeset.ModularChangeset {
	var c = changeset.NewEmpty()
	c.FieldChanges[outer] = changeset.FieldChange{
		Kind: fieldkind.ValueKindIdentifier,
		Change: fieldkind.ValueChange{
			Child: &changeset.NodeChangeset{
				FieldChanges: changeset.FieldChangeMap{
					inner: valueFieldChange(old, new),
				},
			},
		},
	}
	return c
}

func genericChildChangeset(key, childKey changeset.FieldKey, old, new any) *changeset.ModularChangeset {
	var c = changeset.NewEmpty()
	c.FieldChanges[key] = changeset.FieldChange{
		Kind: fieldkind.GenericKindIdentifier,
		Change: fieldkind.GenericHandler{}.ChangeFromChild(0, &changeset.NodeChangeset{
			FieldChanges: changeset.FieldChangeMap{
				childKey: valueFieldChange(old, new),
			},
		}),
	}
	return c
}

// wipeKind is a test field kind whose rebase reports "no remaining change"
// whenever the concurrent change clears the field, the deleted-target
// outcome of a real sequence kind.
const wipeKindIdentifier changeset.FieldKindIdentifier = "test/wipe"

type wipeChange struct {
	Clears  bool
	Payload string
}

type wipeHandler struct{}

func (wipeHandler) Compose(a, b changeset.FieldChangeset, _ fieldkind.ComposeChild) (changeset.FieldChangeset, error) {
	var wa, wb = asWipe(a), asWipe(b)
	return wipeChange{
		Clears:  wa.Clears || wb.Clears,
		Payload: wa.Payload + wb.Payload,
	}, nil
}

func (wipeHandler) Invert(c changeset.FieldChangeset, _ bool, _ fieldkind.InvertChild) (changeset.FieldChangeset, error) {
	return c, nil
}

func (wipeHandler) Rebase(c, over changeset.FieldChangeset, _ fieldkind.RebaseChild) (changeset.FieldChangeset, error) {
	if asWipe(over).Clears {
		return nil, nil
	}
	return c, nil
}

func (wipeHandler) IntoDelta(c changeset.FieldChangeset, _ fieldkind.DeltaFromChild) (*changeset.FieldDelta, error) {
	return &changeset.FieldDelta{Local: []changeset.DeltaMark{{Count: 1}}}, nil
}

func (wipeHandler) IsEmpty(c changeset.FieldChangeset) bool {
	var w = asWipe(c)
	return !w.Clears && w.Payload == ""
}

func (wipeHandler) RelevantRemovedRoots(c changeset.FieldChangeset, _ fieldkind.RemovedRootsFromChild) []changeset.DetachedNodeId {
	return nil
}

func (wipeHandler) ChangeFromChild(index int, child *changeset.NodeChangeset) changeset.FieldChangeset {
	return wipeChange{}
}

func asWipe(c changeset.FieldChangeset) wipeChange {
	if c == nil {
		return wipeChange{}
	}
	return c.(wipeChange)
}

// removedRootKind reports one removed root it keeps referring to, the way a
// move-in of a removed node would.
const removedRootKindIdentifier changeset.FieldKindIdentifier = "test/removedRoot"

type removedRootChange struct {
	Root changeset.DetachedNodeId
}

type removedRootHandler struct{}

func (removedRootHandler) Compose(a, b changeset.FieldChangeset, _ fieldkind.ComposeChild) (changeset.FieldChangeset, error) {
	if a == nil {
		return b, nil
	}
	return a, nil
}

func (removedRootHandler) Invert(c changeset.FieldChangeset, _ bool, _ fieldkind.InvertChild) (changeset.FieldChangeset, error) {
	return c, nil
}

func (removedRootHandler) Rebase(c, _ changeset.FieldChangeset, _ fieldkind.RebaseChild) (changeset.FieldChangeset, error) {
	return c, nil
}

func (removedRootHandler) IntoDelta(c changeset.FieldChangeset, _ fieldkind.DeltaFromChild) (*changeset.FieldDelta, error) {
	var root = c.(removedRootChange).Root
	return &changeset.FieldDelta{Local: []changeset.DeltaMark{{Count: 1, Attach: &root}}}, nil
}

func (removedRootHandler) IsEmpty(c changeset.FieldChangeset) bool {
	return c == nil
}

func (removedRootHandler) RelevantRemovedRoots(c changeset.FieldChangeset, _ fieldkind.RemovedRootsFromChild) []changeset.DetachedNodeId {
	return []changeset.DetachedNodeId{c.(removedRootChange).Root}
}

func (removedRootHandler) ChangeFromChild(index int, child *changeset.NodeChangeset) changeset.FieldChangeset {
	return removedRootChange{}
}
