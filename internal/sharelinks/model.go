package sharelinks

import "time"

// ShareLink is a revocable, time-limited capability token granting access to
// one document without authentication. At most one active link exists per
// document; regenerating revokes the prior token atomically with minting the
// new one.
type ShareLink struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"documentId"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	IsRevoked   bool      `json:"isRevoked"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Active reports whether the link currently grants access.
func (l ShareLink) Active(now time.Time) bool {
	return !l.IsRevoked && l.ExpiresAt.After(now)
}
