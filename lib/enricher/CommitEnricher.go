package enricher

import (
	"slices"

	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/rev"
	"go.uber.org/zap"
)

// CommitEnricher decides, per not-yet-acknowledged local commit, whether its
// reconstructive data must be refreshed before (re)submission, and manages
// the checkouts used to compute that data.
//
// The enricher owns mutable session state and is not safe for concurrent
// use; callers serialize access per local editing session.
type CommitEnricher struct {
	logger   *zap.SugaredLogger
	factory  CheckoutFactory
	inverter Inverter
	arena    *CommitArena

	// tip tracks document state after every commit enriched in normal mode;
	// nil until first needed and after invalidation by a peer commit
	tip        ChangeEnricherCheckout
	tipContext rev.RevisionTag

	pending []*pendingCommit

	// non-nil exactly while a resubmit phase is open
	resubmitQueue    []*Commit
	resubmitCheckout ChangeEnricherCheckout

	maxPending int
}

type pendingCommit struct {
	commit   *Commit
	enriched *Commit
	rollback *changeset.ModularChangeset
}

// NewCommitEnricher wires the enricher to its collaborators. maxPending of 0
// disables the pending-commit backlog warning.
func NewCommitEnricher(factory CheckoutFactory, inverter Inverter, arena *CommitArena, maxPending int, logger *zap.SugaredLogger) *CommitEnricher {
	return &CommitEnricher{
		logger:     logger,
		factory:    factory,
		inverter:   inverter,
		arena:      arena,
		tipContext: rev.None,
		maxPending: maxPending,
	}
}

// EnrichCommit returns an updated commit whose change has been asked to
// refresh its own enrichments against the checkout context of the commit's
// position in the branch, tagged with the commit's revision.
//
// In resubmit mode a cached enrichment is replayed verbatim when the commit
// was not rebased since it was last enriched; a rebased commit is
// re-enriched from the checkout chain of its new parent lineage.
func (e *CommitEnricher) EnrichCommit(commit *Commit, isResubmit bool) (*Commit, error) {
	if isResubmit {
		return e.enrichForResubmit(commit)
	}
	if e.InResubmitPhase() {
		return nil, exception.NewUsageError("cannot enrich a new commit while a resubmit phase is open")
	}
	return e.enrichNew(commit)
}

func (e *CommitEnricher) enrichNew(commit *Commit) (*Commit, error) {
	if e.tip == nil {
		var checkout, err = e.factory(e.tipContext)
		if err != nil {
			return nil, err
		}
		e.tip = checkout
	}

	var enrichedChange, err = e.tip.UpdateChangeEnrichments(commit.Change, commit.Revision)
	if err != nil {
		return nil, err
	}
	if err := e.tip.ApplyTipChange(commit.Change, commit.Revision); err != nil {
		return nil, err
	}
	e.tipContext = commit.Revision

	var enriched = &Commit{
		Revision: commit.Revision,
		Change:   enrichedChange,
		Parent:   commit.Parent,
	}
	e.pending = append(e.pending, &pendingCommit{commit: commit, enriched: enriched})
	if e.maxPending > 0 && len(e.pending) > e.maxPending {
		e.logger.Warnw("pending commit backlog exceeds configured limit",
			"pending", len(e.pending), "limit", e.maxPending)
	}
	return enriched, nil
}

func (e *CommitEnricher) enrichForResubmit(commit *Commit) (*Commit, error) {
	if !e.InResubmitPhase() {
		return nil, exception.NewUsageError("no resubmit phase is open")
	}
	if e.resubmitQueue[0] != commit {
		return nil, exception.NewUsageError("commit resubmitted out of order")
	}
	e.resubmitQueue = e.resubmitQueue[1:]

	var entry = e.findPending(commit.Revision)
	if entry == nil {
		return nil, exception.NewUsageError(
			"commit '" + commit.Revision.String() + "' is no longer pending")
	}

	var enriched *Commit
	var err error
	if !commit.Rebased && entry.commit == commit && entry.enriched != nil {
		// idempotent replay of a commit untouched since its last enrichment
		enriched = entry.enriched
	} else {
		enriched, err = e.reenrich(commit, entry)
	}

	if len(e.resubmitQueue) == 0 {
		e.closeResubmitPhase()
	}
	if err != nil {
		return nil, err
	}
	return enriched, nil
}

func (e *CommitEnricher) reenrich(commit *Commit, entry *pendingCommit) (*Commit, error) {
	if e.resubmitCheckout == nil {
		var base = rev.None
		if parent := e.arena.ParentOf(commit); parent != nil {
			base = parent.Revision
		}
		var checkout, err = e.factory(base)
		if err != nil {
			return nil, err
		}
		e.resubmitCheckout = checkout
	}

	var enrichedChange, err = e.resubmitCheckout.UpdateChangeEnrichments(commit.Change, commit.Revision)
	if err != nil {
		return nil, err
	}
	if err := e.resubmitCheckout.ApplyTipChange(commit.Change, commit.Revision); err != nil {
		return nil, err
	}

	var enriched = &Commit{
		Revision: commit.Revision,
		Change:   enrichedChange,
		Parent:   commit.Parent,
	}
	commit.Rebased = false
	entry.commit = commit
	entry.enriched = enriched
	entry.rollback = nil
	return enriched, nil
}

// CommitSequenced notifies the enricher that a commit was acknowledged by
// the total order. A local commit's bookkeeping is discarded; a peer's
// commit conceptually rebases every still-pending local commit, so their
// cached enrichments are invalidated pending lazy recomputation.
func (e *CommitEnricher) CommitSequenced(isLocalCommitBeingAcknowledged bool) error {
	if isLocalCommitBeingAcknowledged {
		if len(e.pending) == 0 {
			return exception.NewUsageError("no pending local commit to acknowledge")
		}
		e.pending = e.pending[1:]
		if len(e.pending) == 0 && e.tip != nil {
			var err = e.tip.Dispose()
			e.tip = nil
			e.tipContext = rev.None
			return err
		}
		return nil
	}

	for _, entry := range e.pending {
		entry.commit.Rebased = true
		entry.enriched = nil
		entry.rollback = nil
	}
	if e.tip != nil {
		var err = e.tip.Dispose()
		e.tip = nil
		e.tipContext = rev.None
		return err
	}
	return nil
}

// StartResubmitPhase opens a bounded window in which exactly the given
// commits must each be passed to EnrichCommit(_, true) once, in order,
// before the phase auto-closes. An empty batch closes it immediately. The
// batch must match the pending commits one-to-one so a commit acknowledged
// in the meantime can never be resubmitted.
func (e *CommitEnricher) StartResubmitPhase(commits []*Commit) error {
	if e.InResubmitPhase() {
		return exception.NewUsageError("a resubmit phase is already open")
	}
	if len(commits) == 0 {
		return nil
	}
	if len(commits) != len(e.pending) {
		return exception.NewUsageError("resubmit batch does not match the pending commits")
	}
	for i, commit := range commits {
		if commit.Revision != e.pending[i].commit.Revision {
			return exception.NewUsageError("resubmit batch does not match the pending commits")
		}
	}
	e.resubmitQueue = slices.Clone(commits)
	return nil
}

func (e *CommitEnricher) InResubmitPhase() bool {
	return e.resubmitQueue != nil
}

func (e *CommitEnricher) closeResubmitPhase() {
	e.resubmitQueue = nil
	if e.resubmitCheckout != nil {
		if err := e.resubmitCheckout.Dispose(); err != nil {
			e.logger.Errorw("failed to dispose resubmit checkout", "error", err)
		}
		e.resubmitCheckout = nil
	}
}

// RollbackChange returns the rollback inverse of a pending commit, derived
// lazily from its enriched change so destroyed content can be reconstructed
// from the attached refreshers.
func (e *CommitEnricher) RollbackChange(commit *Commit) (*changeset.ModularChangeset, error) {
	var entry = e.findPending(commit.Revision)
	if entry == nil {
		return nil, exception.NewUsageError(
			"commit '" + commit.Revision.String() + "' is not pending")
	}
	if entry.rollback != nil {
		return entry.rollback, nil
	}
	if entry.enriched == nil {
		return nil, exception.NewUsageError(
			"commit '" + commit.Revision.String() + "' has no valid enrichment to invert")
	}
	var rollback, err = e.inverter(rev.Tagged(entry.enriched.Change, entry.enriched.Revision), true)
	if err != nil {
		return nil, err
	}
	entry.rollback = rollback
	return rollback, nil
}

// Dispose releases every checkout the enricher still owns.
func (e *CommitEnricher) Dispose() error {
	var firstErr error
	if e.tip != nil {
		firstErr = e.tip.Dispose()
		e.tip = nil
	}
	if e.resubmitCheckout != nil {
		if err := e.resubmitCheckout.Dispose(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.resubmitCheckout = nil
	}
	e.resubmitQueue = nil
	return firstErr
}

func (e *CommitEnricher) PendingCount() int {
	return len(e.pending)
}

func (e *CommitEnricher) findPending(revision rev.RevisionTag) *pendingCommit {
	for _, entry := range e.pending {
		if entry.commit.Revision == revision {
			return entry
		}
	}
	return nil
}
