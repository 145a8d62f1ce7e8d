package sharelinks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service manages share links. The validation clock is injectable for tests.
type Service struct {
	Repo Repo
	TTL  time.Duration

	now func() time.Time
}

// NewService constructs a Service. ttl bounds the lifetime of minted links.
func NewService(repo Repo, ttl time.Duration) *Service {
	return &Service{Repo: repo, TTL: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Validate reports whether the token currently grants access to the document:
// the link must exist, be unrevoked and be unexpired. Purely a decision, no
// side effects.
func (s *Service) Validate(ctx context.Context, documentID, token string) (bool, error) {
	if documentID == "" || token == "" {
		return false, nil
	}
	link, err := s.Repo.GetByToken(ctx, documentID, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return link.Active(s.now()), nil
}

// Regenerate revokes the document's current link and mints a new one as one
// atomic unit.
func (s *Service) Regenerate(ctx context.Context, documentID, createdByID string) (ShareLink, error) {
	now := s.now()
	link := ShareLink{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		Token:       newToken(),
		ExpiresAt:   now.Add(s.TTL),
		CreatedByID: createdByID,
		CreatedAt:   now,
	}
	if err := s.Repo.Regenerate(ctx, link); err != nil {
		return ShareLink{}, err
	}
	return link, nil
}

// Active returns the document's current active link.
func (s *Service) Active(ctx context.Context, documentID string) (ShareLink, error) {
	link, err := s.Repo.GetActiveByDocument(ctx, documentID)
	if err != nil {
		return ShareLink{}, err
	}
	if !link.Active(s.now()) {
		return ShareLink{}, ErrNotFound
	}
	return link, nil
}

// Revoke revokes the document's active links.
func (s *Service) Revoke(ctx context.Context, documentID string) (int, error) {
	return s.Repo.RevokeAll(ctx, documentID)
}

func newToken() string {
	return uuid.NewString() + uuid.NewString()
}
