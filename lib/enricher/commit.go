package enricher

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/rev"
)

// Commit is one revision's change plus a link to its parent, forming a
// branch. Rebasing produces new commit objects with new parents; only the
// Rebased marker is ever mutated in place. The parent link is an arena index
// rather than a pointer, so branches can share unmodified ancestors without
// ownership cycles.
type Commit struct {
	Revision rev.RevisionTag
	Change   *changeset.ModularChangeset
	Parent   int

	// Rebased marks a commit whose change was rewritten by rebasing since
	// it was last enriched, invalidating any cached enrichment.
	Rebased bool
}

const NoParent = -1

type CommitArena struct {
	commits []*Commit
}

func NewCommitArena() *CommitArena {
	return &CommitArena{}
}

func (a *CommitArena) Append(revision rev.RevisionTag, change *changeset.ModularChangeset, parent int) (int, *Commit) {
	var commit = &Commit{
		Revision: revision,
		Change:   change,
		Parent:   parent,
	}
	a.commits = append(a.commits, commit)
	return len(a.commits) - 1, commit
}

func (a *CommitArena) Get(index int) *Commit {
	if index < 0 || index >= len(a.commits) {
		return nil
	}
	return a.commits[index]
}

func (a *CommitArena) ParentOf(c *Commit) *Commit {
	return a.Get(c.Parent)
}

func (a *CommitArena) Len() int {
	return len(a.commits)
}

// Ancestry returns the chain from the root ancestor down to c, in
// application order.
func (a *CommitArena) Ancestry(c *Commit) []*Commit {
	var chain []*Commit
	for cur := c; cur != nil; cur = a.ParentOf(cur) {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
