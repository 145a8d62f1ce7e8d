package sharelinks

import (
	"context"
	"errors"
)

// ErrNotFound indicates no matching share link exists.
var ErrNotFound = errors.New("share link not found")

// Repo defines persistence operations for share links. Regenerate must revoke
// the document's previous active link and insert the new one as one atomic
// unit: a token raced against a regeneration fails validation the instant the
// new row commits.
type Repo interface {
	GetByToken(ctx context.Context, documentID, token string) (ShareLink, error)
	GetActiveByDocument(ctx context.Context, documentID string) (ShareLink, error)
	Regenerate(ctx context.Context, link ShareLink) error
	RevokeAll(ctx context.Context, documentID string) (int, error)
}
