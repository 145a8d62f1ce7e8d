package moderation

import "context"

// ErrNotFound indicates the document under moderation does not exist.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "document not found" }

// DocumentInfo is the slice of a document that moderation decisions need.
type DocumentInfo struct {
	ID         string `json:"id"`
	UploaderID string `json:"uploaderId"`
	Title      string `json:"title"`
	IsPublic   bool   `json:"isPublic"`
	Status     Status `json:"moderationStatus"`
	Reason     string `json:"moderationReason,omitempty"`
}

// DocumentGateway is implemented by the documents repository. It keeps this
// package decoupled from document storage while letting the service persist
// status transitions.
type DocumentGateway interface {
	GetForModeration(ctx context.Context, documentID string) (DocumentInfo, error)
	SetModerationStatus(ctx context.Context, documentID string, status Status, reason string) error
	ListByStatus(ctx context.Context, status Status, page, limit int) ([]DocumentInfo, int64, error)
}
