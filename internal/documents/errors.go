package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist or was deleted.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput indicates malformed document input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden indicates the caller does not own the document.
	ErrForbidden = errors.New("not the document owner")
)
