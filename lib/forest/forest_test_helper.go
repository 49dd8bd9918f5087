package forest

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/family"
	"github.com/ether/sharedtree-go/lib/fieldkind"
	"github.com/ether/sharedtree-go/lib/rev"
	"go.uber.org/zap"
)

// restore is a minimal test kind that re-attaches one previously removed
// subtree, giving the checkout tests a change that both names a relevant
// removed root and consumes it when applied.
const restoreKindIdentifier changeset.FieldKindIdentifier = "test/restore"

type restoreChange struct {
	Root rev.ChangeAtomId
}

type restoreHandler struct{}

func (restoreHandler) Compose(a, b changeset.FieldChangeset, composeChild fieldkind.ComposeChild) (changeset.FieldChangeset, error) {
	return b, nil
}

func (restoreHandler) Invert(c changeset.FieldChangeset, isRollback bool, invertChild fieldkind.InvertChild) (changeset.FieldChangeset, error) {
	return c, nil
}

func (restoreHandler) Rebase(c, over changeset.FieldChangeset, rebaseChild fieldkind.RebaseChild) (changeset.FieldChangeset, error) {
	return c, nil
}

func (restoreHandler) IntoDelta(c changeset.FieldChangeset, deltaFromChild fieldkind.DeltaFromChild) (*changeset.FieldDelta, error) {
	var id = changeset.DetachedNodeIdFromAtom(c.(restoreChange).Root)
	return &changeset.FieldDelta{
		Local: []changeset.DeltaMark{{Count: 1, Attach: &id}},
	}, nil
}

func (restoreHandler) IsEmpty(c changeset.FieldChangeset) bool {
	return false
}

func (restoreHandler) RelevantRemovedRoots(c changeset.FieldChangeset, fromChild fieldkind.RemovedRootsFromChild) []changeset.DetachedNodeId {
	return []changeset.DetachedNodeId{changeset.DetachedNodeIdFromAtom(c.(restoreChange).Root)}
}

func (restoreHandler) ChangeFromChild(index int, child *changeset.NodeChangeset) changeset.FieldChangeset {
	return nil
}

func newTestFamily() *family.Family {
	var kinds = fieldkind.NewRegistry()
	kinds.Register(restoreKindIdentifier, restoreHandler{})
	return family.New(kinds, zap.NewNop().Sugar())
}

func restoreChangeset(key changeset.FieldKey, root rev.ChangeAtomId) *changeset.ModularChangeset {
	var c = changeset.NewEmpty()
	c.FieldChanges[key] = changeset.FieldChange{
		Kind:   restoreKindIdentifier,
		Change: restoreChange{Root: root},
	}
	return c
}
