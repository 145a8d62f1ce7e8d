package downloads

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the download attempt does not exist.
	ErrNotFound = errors.New("download not found")
	// ErrConflict indicates a transition against a terminal download row.
	ErrConflict = errors.New("download already finalized")
)

// AuthorizationError carries the authorizer's denial reason.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("download not authorized: %s", e.Reason)
}
