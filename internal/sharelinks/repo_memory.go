package sharelinks

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	links []ShareLink
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) GetByToken(ctx context.Context, documentID, token string) (ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return ShareLink{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.links {
		if r.links[i].DocumentID == documentID && r.links[i].Token == token {
			return r.links[i], nil
		}
	}
	return ShareLink{}, ErrNotFound
}

func (r *MemoryRepo) GetActiveByDocument(ctx context.Context, documentID string) (ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return ShareLink{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.links {
		if r.links[i].DocumentID == documentID && !r.links[i].IsRevoked {
			return r.links[i], nil
		}
	}
	return ShareLink{}, ErrNotFound
}

func (r *MemoryRepo) Regenerate(ctx context.Context, link ShareLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.links {
		if r.links[i].DocumentID == link.DocumentID {
			r.links[i].IsRevoked = true
		}
	}
	r.links = append(r.links, link)
	return nil
}

func (r *MemoryRepo) RevokeAll(ctx context.Context, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	revoked := 0
	for i := range r.links {
		if r.links[i].DocumentID == documentID && !r.links[i].IsRevoked {
			r.links[i].IsRevoked = true
			revoked++
		}
	}
	return revoked, nil
}

var _ Repo = (*MemoryRepo)(nil)
