package downloads

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo. The mutex serializes
// reward claims, matching the atomicity of the Postgres partial unique index.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Download
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]Download)}
}

func (r *MemoryRepo) Create(ctx context.Context, d Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[d.ID] = d
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, downloadID string) (Download, error) {
	if err := ctx.Err(); err != nil {
		return Download{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[downloadID]
	if !ok {
		return Download{}, ErrNotFound
	}
	return d, nil
}

func (r *MemoryRepo) MarkSuccess(ctx context.Context, downloadID string) error {
	return r.update(ctx, downloadID, func(d *Download) { d.Success = true })
}

func (r *MemoryRepo) MarkFailed(ctx context.Context, downloadID string) error {
	return r.update(ctx, downloadID, func(d *Download) { d.Success = false })
}

func (r *MemoryRepo) MarkConfirmed(ctx context.Context, downloadID string) error {
	return r.update(ctx, downloadID, func(d *Download) {
		if d.ConfirmedAt == nil {
			now := time.Now().UTC()
			d.ConfirmedAt = &now
		}
	})
}

func (r *MemoryRepo) ClaimReward(ctx context.Context, downloadID, documentID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[downloadID]
	if !ok || !row.Success || row.UploaderRewarded {
		return false, nil
	}
	for _, other := range r.rows {
		if other.DocumentID == documentID && other.UserID == userID && other.UploaderRewarded {
			return false, nil
		}
	}
	row.UploaderRewarded = true
	row.UpdatedAt = time.Now().UTC()
	r.rows[downloadID] = row
	return true, nil
}

func (r *MemoryRepo) ReleaseReward(ctx context.Context, downloadID string) error {
	return r.update(ctx, downloadID, func(d *Download) { d.UploaderRewarded = false })
}

func (r *MemoryRepo) update(ctx context.Context, downloadID string, apply func(*Download)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[downloadID]
	if !ok {
		return ErrNotFound
	}
	apply(&d)
	d.UpdatedAt = time.Now().UTC()
	r.rows[downloadID] = d
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
