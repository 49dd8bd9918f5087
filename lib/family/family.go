package family

import (
	"fmt"

	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/fieldkind"
	"github.com/ether/sharedtree-go/lib/rev"
	"go.uber.org/zap"
)

// Family orchestrates compose, invert, rebase and delta derivation over
// whole modular changesets, delegating per-field semantics to the change
// handlers of the registered field kinds.
//
// All operations are pure functions over immutable inputs and may be called
// concurrently on disjoint changesets.
type Family struct {
	kinds  *fieldkind.Registry
	logger *zap.SugaredLogger
}

func New(kinds *fieldkind.Registry, logger *zap.SugaredLogger) *Family {
	return &Family{
		kinds:  kinds,
		logger: logger,
	}
}

func (f *Family) Kinds() *fieldkind.Registry {
	return f.kinds
}

// The recursive field walks panic with the underlying exception on an
// invariant violation; the exported operations recover it into an ordinary
// error return. Partial output is never produced.
func recoverError(errp *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*errp = e
			return
		}
		panic(r)
	}
}

func (f *Family) mustResolve(kind changeset.FieldKindIdentifier) fieldkind.ChangeHandler {
	var handler, err = f.kinds.Resolve(kind)
	if err != nil {
		panic(err)
	}
	return handler
}

// alignKinds reconciles the kinds of two changes for the same field. When
// exactly one side is generic, its index-0 child change is converted onto
// the concrete kind's child addressing; two distinct concrete kinds for one
// field are an inconsistency.
func (f *Family) alignKinds(a, b changeset.FieldChange) (changeset.FieldKindIdentifier, fieldkind.ChangeHandler, changeset.FieldChangeset, changeset.FieldChangeset) {
	if a.Kind == b.Kind {
		return a.Kind, f.mustResolve(a.Kind), a.Change, b.Change
	}
	if a.Kind == fieldkind.GenericKindIdentifier {
		var handler = f.mustResolve(b.Kind)
		var converted = handler.ChangeFromChild(0, fieldkind.ChildOfGeneric(a.Change))
		return b.Kind, handler, converted, b.Change
	}
	if b.Kind == fieldkind.GenericKindIdentifier {
		var handler = f.mustResolve(a.Kind)
		var converted = handler.ChangeFromChild(0, fieldkind.ChildOfGeneric(b.Change))
		return a.Kind, handler, a.Change, converted
	}
	panic(exception.NewDataIntegrityError(
		fmt.Sprintf("conflicting field kinds '%s' and '%s' for the same field", a.Kind, b.Kind), nil))
}

// qualifyAtomId re-tags a local atom id with the revision of the tagged
// change that owns it. A local build's identity only becomes stable once a
// revision is assigned.
func qualifyAtomId(id rev.ChangeAtomId, revision rev.RevisionTag) rev.ChangeAtomId {
	if id.Revision.IsNone() && !revision.IsNone() {
		return rev.ChangeAtomId{Revision: revision, LocalId: id.LocalId}
	}
	return id
}
