package forest

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/enricher"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/family"
	"github.com/ether/sharedtree-go/lib/rev"
)

// Checkout is an isolated view over a cloned forest, implementing the
// enricher's checkout contract: it refreshes a change's enrichments against
// its own state and can be advanced past tip changes.
type Checkout struct {
	family   *family.Family
	forest   *Forest
	context  rev.RevisionTag
	disposed bool
}

// NewCheckoutFactory returns a factory producing checkouts over clones of
// base. The base forest itself is never mutated through a checkout.
func NewCheckoutFactory(fam *family.Family, base *Forest) enricher.CheckoutFactory {
	return func(context rev.RevisionTag) (enricher.ChangeEnricherCheckout, error) {
		return &Checkout{
			family:  fam,
			forest:  base.Clone(),
			context: context,
		}, nil
	}
}

func (c *Checkout) UpdateChangeEnrichments(change *changeset.ModularChangeset, revision rev.RevisionTag) (*changeset.ModularChangeset, error) {
	if c.disposed {
		return nil, exception.NewUsageError("checkout used after dispose")
	}
	var relevant, err = c.family.RelevantRemovedRoots(rev.Tagged(change, revision))
	if err != nil {
		return nil, err
	}
	return c.family.UpdateRefreshers(change, c.forest.GetDetached, relevant)
}

func (c *Checkout) ApplyTipChange(change *changeset.ModularChangeset, revision rev.RevisionTag) error {
	if c.disposed {
		return exception.NewUsageError("checkout used after dispose")
	}
	var delta, err = c.family.IntoDelta(rev.Tagged(change, revision))
	if err != nil {
		return err
	}
	if err := c.forest.ApplyDelta(delta); err != nil {
		return err
	}
	c.context = revision
	return nil
}

func (c *Checkout) Context() rev.RevisionTag {
	return c.context
}

func (c *Checkout) Dispose() error {
	if c.disposed {
		return exception.NewUsageError("checkout disposed twice")
	}
	c.disposed = true
	c.forest = nil
	return nil
}
