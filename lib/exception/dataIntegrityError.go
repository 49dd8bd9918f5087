package exception

import "fmt"

// DataIntegrityError reports an internal inconsistency in changeset data.
// Merge algorithms never degrade to partial output: a broken invariant is
// surfaced immediately so a corrupt merge result can never reach peers.
type DataIntegrityError struct {
	*AppError
}

func NewDataIntegrityError(message string, cause error) *DataIntegrityError {
	return &DataIntegrityError{
		AppError: &AppError{
			Code:    "DATA_INTEGRITY_ERROR",
			Message: message,
			Cause:   cause,
		},
	}
}

type DetachedNodeNotFoundError struct {
	*AppError
	NodeId string
}

func NewDetachedNodeNotFoundError(nodeId string) *DetachedNodeNotFoundError {
	return &DetachedNodeNotFoundError{
		AppError: &AppError{
			Code:    "DETACHED_NODE_NOT_FOUND",
			Message: fmt.Sprintf("detached node '%s' could not be looked up", nodeId),
		},
		NodeId: nodeId,
	}
}

type UnknownFieldKindError struct {
	*AppError
	Kind string
}

func NewUnknownFieldKindError(kind string) *UnknownFieldKindError {
	return &UnknownFieldKindError{
		AppError: &AppError{
			Code:    "UNKNOWN_FIELD_KIND",
			Message: fmt.Sprintf("no change handler registered for field kind '%s'", kind),
		},
		Kind: kind,
	}
}
