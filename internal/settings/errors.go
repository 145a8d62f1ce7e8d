package settings

import "errors"

// ErrInvalidSettings indicates a settings update with negative amounts.
var ErrInvalidSettings = errors.New("point amounts must be non-negative")
