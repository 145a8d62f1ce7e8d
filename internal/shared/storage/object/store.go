package object

import (
	"context"
	"io"
	"time"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// SignedURL returns a time-limited URL granting read access to one object.
	// Expiry of the URL affects file access only, never any ledger state.
	SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
}
