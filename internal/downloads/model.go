package downloads

import "time"

// Download is one download attempt. A row is created when the attempt starts
// and moves one way through its transitions: success is set once when the
// spend commits, confirmedAt is stamped on the first confirmation and ends
// the cancellation window, and uploaderRewarded flips on the first confirmed
// completion per (document, downloader) pair.
type Download struct {
	ID               string     `json:"id"`
	DocumentID       string     `json:"documentId"`
	UserID           string     `json:"userId"`
	IPAddress        string     `json:"ipAddress,omitempty"`
	Success          bool       `json:"success"`
	UploaderRewarded bool       `json:"uploaderRewarded"`
	CostPaid         int64      `json:"costPaid"`
	Bypass           bool       `json:"bypass"`
	ConfirmedAt      *time.Time `json:"confirmedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// InitResult is returned to the client when a download attempt succeeds.
type InitResult struct {
	DownloadID string    `json:"downloadId"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Cost       int64     `json:"cost"`
	Bypass     bool      `json:"bypass"`
}
