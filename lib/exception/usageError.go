package exception

// UsageError reports a misuse of the API by the caller. It is never retried
// and always indicates a bug in the calling code rather than bad data.
type UsageError struct {
	*AppError
}

func NewUsageError(message string) *UsageError {
	return &UsageError{
		AppError: &AppError{
			Code:    "USAGE_ERROR",
			Message: message,
		},
	}
}
