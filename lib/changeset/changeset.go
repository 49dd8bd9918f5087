package changeset

import (
	"github.com/ether/sharedtree-go/lib/rev"
	"github.com/ether/sharedtree-go/lib/utils"
)

type FieldKey string

// FieldKindIdentifier names the pluggable semantics governing one field's
// changes (e.g. the generic kind, a value kind, a sequence kind).
type FieldKindIdentifier string

// FieldChangeset is the kind-specific, opaque change value stored per field.
// Only the change handler registered for the field's kind can interpret it.
type FieldChangeset any

type FieldChange struct {
	Kind   FieldKindIdentifier
	Change FieldChangeset
}

type FieldChangeMap map[FieldKey]FieldChange

func (m FieldChangeMap) Clone() FieldChangeMap {
	var out = make(FieldChangeMap, len(m))
	for key, change := range m {
		out[key] = change
	}
	return out
}

func (m FieldChangeMap) SortedKeys() []FieldKey {
	return utils.SortedKeys(m)
}

// NodeChangeset is the nested changeset embedded in a field change for one
// affected child node.
type NodeChangeset struct {
	FieldChanges FieldChangeMap
}

func (n *NodeChangeset) Empty() bool {
	return n == nil || len(n.FieldChanges) == 0
}

// ModularChangeset is one edit's effect on the document. It is immutable
// after construction: compose, invert and rebase all return new values.
type ModularChangeset struct {
	FieldChanges FieldChangeMap

	// Builds records subtrees newly inserted by this changeset, Destroys the
	// number of subtrees permanently removed per atom id, and Refreshers
	// cached copies kept solely so a later inverse can reconstruct content.
	Builds     *AtomMap[[]TreeNode]
	Destroys   *AtomMap[int]
	Refreshers *AtomMap[[]TreeNode]

	// Revisions lists the original edits this changeset is composed of, in
	// application order.
	Revisions []rev.RevisionInfo

	// MaxId is the high-water mark of local ids allocated under this
	// changeset's own revision.
	MaxId rev.ChangesetLocalId

	// Constraints holds per-node existence constraints; when a constrained
	// node is destroyed by a change this one is rebased over, the whole
	// changeset is marked violated and derives an empty delta.
	Constraints        map[rev.ChangeAtomId]struct{}
	ConstraintViolated bool
}

// NewEmpty returns the canonical no-op changeset, the identity element for
// compose.
func NewEmpty() *ModularChangeset {
	return &ModularChangeset{
		FieldChanges: make(FieldChangeMap),
		Builds:       NewAtomMap[[]TreeNode](),
		Destroys:     NewAtomMap[int](),
		Refreshers:   NewAtomMap[[]TreeNode](),
		MaxId:        -1,
	}
}

func (c *ModularChangeset) Empty() bool {
	return len(c.FieldChanges) == 0 &&
		c.Builds.Len() == 0 &&
		c.Destroys.Len() == 0 &&
		c.Refreshers.Len() == 0
}

// ShallowClone copies the changeset's top level so a derived value can be
// edited without touching the original.
func (c *ModularChangeset) ShallowClone() *ModularChangeset {
	var constraints map[rev.ChangeAtomId]struct{}
	if c.Constraints != nil {
		constraints = make(map[rev.ChangeAtomId]struct{}, len(c.Constraints))
		for id := range c.Constraints {
			constraints[id] = struct{}{}
		}
	}
	return &ModularChangeset{
		FieldChanges:       c.FieldChanges.Clone(),
		Builds:             c.Builds.Clone(),
		Destroys:           c.Destroys.Clone(),
		Refreshers:         c.Refreshers.Clone(),
		Revisions:          append([]rev.RevisionInfo(nil), c.Revisions...),
		MaxId:              c.MaxId,
		Constraints:        constraints,
		ConstraintViolated: c.ConstraintViolated,
	}
}
