package documents

import (
	"time"

	"docshare-backend/internal/moderation"
)

// Document represents an uploaded document owned by an uploader. DownloadCost
// is a per-document override; nil means the system default applies.
type Document struct {
	ID               string
	UploaderID       string
	Title            string
	Description      string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	IsPublic         bool
	ModerationStatus moderation.Status
	ModerationReason string
	DownloadCost     *int64
	DownloadCount    int64
	PageCount        int
	PreviewText      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsApproved reports whether moderation permits public access.
func (d Document) IsApproved() bool {
	return moderation.PubliclyVisible(d.ModerationStatus)
}
