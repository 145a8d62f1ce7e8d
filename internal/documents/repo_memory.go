package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"docshare-backend/internal/moderation"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByUploader lists an uploader's documents, newest first.
func (r *MemoryRepo) ListByUploader(ctx context.Context, uploaderID string, limit, offset int) ([]Document, error) {
	return r.list(ctx, limit, offset, true, func(doc Document) bool {
		return doc.UploaderID == uploaderID
	})
}

// ListPublic lists approved public documents, newest first.
func (r *MemoryRepo) ListPublic(ctx context.Context, limit, offset int) ([]Document, error) {
	return r.list(ctx, limit, offset, true, func(doc Document) bool {
		return doc.IsPublic && doc.ModerationStatus == moderation.StatusApproved
	})
}

// ListByStatus lists documents in a moderation state, oldest first.
func (r *MemoryRepo) ListByStatus(ctx context.Context, status moderation.Status, limit, offset int) ([]Document, int64, error) {
	r.mu.RLock()
	var total int64
	for _, doc := range r.data {
		if doc.ModerationStatus == status {
			total++
		}
	}
	r.mu.RUnlock()

	docs, err := r.list(ctx, limit, offset, false, func(doc Document) bool {
		return doc.ModerationStatus == status
	})
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// UpdateMetadata persists title, description and the download cost override.
func (r *MemoryRepo) UpdateMetadata(ctx context.Context, doc Document) error {
	return r.update(ctx, doc.ID, func(stored *Document) {
		stored.Title = doc.Title
		stored.Description = doc.Description
		stored.DownloadCost = doc.DownloadCost
	})
}

// ReplaceFile swaps the stored file and resets the moderation state.
func (r *MemoryRepo) ReplaceFile(ctx context.Context, doc Document) error {
	return r.update(ctx, doc.ID, func(stored *Document) {
		stored.FileName = doc.FileName
		stored.MimeType = doc.MimeType
		stored.SizeBytes = doc.SizeBytes
		stored.StorageKey = doc.StorageKey
		stored.PageCount = doc.PageCount
		stored.PreviewText = doc.PreviewText
		stored.ModerationStatus = doc.ModerationStatus
		stored.ModerationReason = ""
	})
}

// SetVisibility flips isPublic and records the resulting moderation status.
func (r *MemoryRepo) SetVisibility(ctx context.Context, documentID string, isPublic bool, status moderation.Status) error {
	return r.update(ctx, documentID, func(stored *Document) {
		stored.IsPublic = isPublic
		stored.ModerationStatus = status
	})
}

// SetModerationStatus records a moderation decision.
func (r *MemoryRepo) SetModerationStatus(ctx context.Context, documentID string, status moderation.Status, reason string) error {
	return r.update(ctx, documentID, func(stored *Document) {
		stored.ModerationStatus = status
		stored.ModerationReason = reason
	})
}

// IncrementDownloadCount bumps the download counter by one.
func (r *MemoryRepo) IncrementDownloadCount(ctx context.Context, documentID string) error {
	return r.update(ctx, documentID, func(stored *Document) {
		stored.DownloadCount++
	})
}

// Delete removes a document.
func (r *MemoryRepo) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[documentID]; !ok {
		return ErrNotFound
	}
	delete(r.data, documentID)
	return nil
}

// ClaimGuest reassigns documents owned by a guest identity to an
// authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	migrated := 0
	for id, doc := range r.data {
		if doc.UploaderID == guestUserID {
			doc.UploaderID = authedUserID
			r.data[id] = doc
			migrated++
		}
	}
	return migrated, nil
}

// DeleteAllByUploader removes every document owned by the uploader.
func (r *MemoryRepo) DeleteAllByUploader(ctx context.Context, uploaderID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, doc := range r.data {
		if doc.UploaderID == uploaderID {
			delete(r.data, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRepo) list(ctx context.Context, limit, offset int, newestFirst bool, keep func(Document) bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	r.mu.RLock()
	var matched []Document
	for _, doc := range r.data {
		if keep(doc) {
			matched = append(matched, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if newestFirst {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *MemoryRepo) update(ctx context.Context, documentID string, apply func(*Document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentID]
	if !ok {
		return ErrNotFound
	}
	apply(&doc)
	doc.UpdatedAt = time.Now().UTC()
	r.data[documentID] = doc
	return nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
