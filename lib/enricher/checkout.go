package enricher

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/rev"
)

// ChangeEnricherCheckout is an isolated, revertible view of document state
// used to compute enrichment (refresher) data for one lineage of pending
// commits. A checkout always reflects exactly the commits of its lineage,
// applied in ancestor order, before a change is queried against it.
//
// Checkouts are scoped resources: each must be released exactly once.
// Releasing twice is a caller bug and Dispose reports it as an error.
type ChangeEnricherCheckout interface {
	// UpdateChangeEnrichments returns an updated change whose refresher
	// entries reflect this checkout's state, for a change about to be
	// attributed to revision.
	UpdateChangeEnrichments(change *changeset.ModularChangeset, revision rev.RevisionTag) (*changeset.ModularChangeset, error)

	// ApplyTipChange advances the checkout past change.
	ApplyTipChange(change *changeset.ModularChangeset, revision rev.RevisionTag) error

	Dispose() error
}

// CheckoutFactory produces a fresh checkout bound to a starting context.
// rev.None asks for the current tip of the acknowledged shared history.
type CheckoutFactory func(base rev.RevisionTag) (ChangeEnricherCheckout, error)

// Inverter derives the state-restoring inverse of a tagged change, typically
// the change family's own Invert.
type Inverter func(tc rev.TaggedChange[*changeset.ModularChangeset], isRollback bool) (*changeset.ModularChangeset, error)
