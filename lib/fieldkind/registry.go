package fieldkind

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
)

// Registry maps field-kind identifiers to their change handlers. The generic
// and value kinds are always registered.
type Registry struct {
	handlers map[changeset.FieldKindIdentifier]ChangeHandler
}

func NewRegistry() *Registry {
	var r = &Registry{
		handlers: make(map[changeset.FieldKindIdentifier]ChangeHandler),
	}
	r.Register(GenericKindIdentifier, GenericHandler{})
	r.Register(ValueKindIdentifier, ValueHandler{})
	return r
}

func (r *Registry) Register(kind changeset.FieldKindIdentifier, handler ChangeHandler) {
	r.handlers[kind] = handler
}

// Resolve fails on an unknown identifier. An unresolvable kind means the
// changeset cannot be interpreted, and a partial interpretation would
// corrupt shared state for every collaborator.
func (r *Registry) Resolve(kind changeset.FieldKindIdentifier) (ChangeHandler, error) {
	var handler, ok = r.handlers[kind]
	if !ok {
		return nil, exception.NewUnknownFieldKindError(string(kind))
	}
	return handler, nil
}
