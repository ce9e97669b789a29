package catalog

import "errors"

// Kind classifies a catalog error so callers can branch on it instead
// of parsing message text.
type Kind string

const (
	// KindValidation marks empty or malformed input; no mutation happened.
	KindValidation Kind = "validation"
	// KindConflict marks a duplicate font name or variant; no mutation happened.
	KindConflict Kind = "conflict"
	// KindNotFound marks an unknown font or variant id.
	KindNotFound Kind = "not_found"
	// KindStorage marks an underlying persistence failure.
	KindStorage Kind = "storage"
)

// Error is the tagged error type every Store operation returns on
// failure: a machine-readable kind plus a human message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a catalog error, or an empty Kind for any
// other error.
func KindOf(err error) Kind {
	var catalogErr *Error
	if errors.As(err, &catalogErr) {
		return catalogErr.Kind
	}
	return ""
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func conflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func notFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func storageError(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}
