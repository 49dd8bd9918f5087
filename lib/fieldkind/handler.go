package fieldkind

import (
	"github.com/ether/sharedtree-go/lib/changeset"
)

// Child callbacks are injected by the orchestrator so a handler never needs
// to know how nested node changesets are combined. This breaks the cycle
// between "compose a field" and "compose a node".
type (
	ComposeChild func(a, b *changeset.NodeChangeset) *changeset.NodeChangeset
	InvertChild  func(c *changeset.NodeChangeset) *changeset.NodeChangeset
	// RebaseChild returns nil when no change remains for the child, an
	// ordinary outcome when the child was concurrently deleted.
	RebaseChild           func(c, over *changeset.NodeChangeset) *changeset.NodeChangeset
	DeltaFromChild        func(c *changeset.NodeChangeset) map[changeset.FieldKey]*changeset.FieldDelta
	RemovedRootsFromChild func(c *changeset.NodeChangeset) []changeset.DetachedNodeId
)

// ChangeHandler implements one field kind's change semantics. Handlers must
// be pure: compose, invert and rebase stay referentially transparent.
type ChangeHandler interface {
	Compose(a, b changeset.FieldChangeset, composeChild ComposeChild) (changeset.FieldChangeset, error)

	Invert(c changeset.FieldChangeset, isRollback bool, invertChild InvertChild) (changeset.FieldChangeset, error)

	// Rebase returns nil when nothing of c remains after over, e.g. when
	// the edit's target was concurrently deleted. That is not an error.
	Rebase(c, over changeset.FieldChangeset, rebaseChild RebaseChild) (changeset.FieldChangeset, error)

	IntoDelta(c changeset.FieldChangeset, deltaFromChild DeltaFromChild) (*changeset.FieldDelta, error)

	IsEmpty(c changeset.FieldChangeset) bool

	RelevantRemovedRoots(c changeset.FieldChangeset, fromChild RemovedRootsFromChild) []changeset.DetachedNodeId

	// ChangeFromChild wraps a nested node changeset into a field change
	// addressing the child at the given index. The orchestrator uses it to
	// convert a generic-kind change onto a concrete kind's child addressing.
	ChangeFromChild(index int, child *changeset.NodeChangeset) changeset.FieldChangeset
}
