package enricher

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/rev"
	"go.uber.org/zap"
)

// fakeCheckout records the calls the enricher makes so tests can assert
// checkout lifetimes and apply ordering without a real forest.
type fakeCheckout struct {
	base         rev.RevisionTag
	applied      []rev.RevisionTag
	enrichCalls  int
	disposed     bool
	disposeCount int
}

func (c *fakeCheckout) UpdateChangeEnrichments(change *changeset.ModularChangeset, revision rev.RevisionTag) (*changeset.ModularChangeset, error) {
	if c.disposed {
		return nil, exception.NewUsageError("checkout used after dispose")
	}
	c.enrichCalls++
	var enriched = change.ShallowClone()
	// leave a visible trace of the enrichment
	enriched.Refreshers.Set(
		rev.ChangeAtomId{Revision: revision, LocalId: rev.ChangesetLocalId(1000 + c.enrichCalls)},
		[]changeset.TreeNode{{Type: "trace"}},
	)
	return enriched, nil
}

func (c *fakeCheckout) ApplyTipChange(change *changeset.ModularChangeset, revision rev.RevisionTag) error {
	if c.disposed {
		return exception.NewUsageError("checkout used after dispose")
	}
	c.applied = append(c.applied, revision)
	return nil
}

func (c *fakeCheckout) Dispose() error {
	c.disposeCount++
	if c.disposed {
		return exception.NewUsageError("checkout disposed twice")
	}
	c.disposed = true
	return nil
}

type fakeCheckoutFactory struct {
	created []*fakeCheckout
}

func (f *fakeCheckoutFactory) factory(base rev.RevisionTag) (ChangeEnricherCheckout, error) {
	var checkout = &fakeCheckout{base: base}
	f.created = append(f.created, checkout)
	return checkout, nil
}

func cloneInverter(tc rev.TaggedChange[*changeset.ModularChangeset], isRollback bool) (*changeset.ModularChangeset, error) {
	return tc.Change.ShallowClone(), nil
}

func newTestEnricher() (*CommitEnricher, *fakeCheckoutFactory, *CommitArena) {
	var factory = &fakeCheckoutFactory{}
	var arena = NewCommitArena()
	var e = NewCommitEnricher(factory.factory, cloneInverter, arena, 0, zap.NewNop().Sugar())
	return e, factory, arena
}

func appendTestCommit(arena *CommitArena, parent int) (int, *Commit) {
	var c = changeset.NewEmpty()
	c.FieldChanges["a"] = changeset.FieldChange{Kind: "modular/value"}
	return arena.Append(rev.NewRevisionTag(), c, parent)
}
