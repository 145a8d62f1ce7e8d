package documents

import (
	"context"

	"docshare-backend/internal/moderation"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByUploader(ctx context.Context, uploaderID string, limit, offset int) ([]Document, error)
	ListPublic(ctx context.Context, limit, offset int) ([]Document, error)
	ListByStatus(ctx context.Context, status moderation.Status, limit, offset int) ([]Document, int64, error)
	UpdateMetadata(ctx context.Context, doc Document) error
	ReplaceFile(ctx context.Context, doc Document) error
	SetVisibility(ctx context.Context, documentID string, isPublic bool, status moderation.Status) error
	SetModerationStatus(ctx context.Context, documentID string, status moderation.Status, reason string) error
	IncrementDownloadCount(ctx context.Context, documentID string) error
	Delete(ctx context.Context, documentID string) error
	DeleteAllByUploader(ctx context.Context, uploaderID string) (int, error)
}
