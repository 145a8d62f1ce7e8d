package settings

import "time"

// PointsSettings holds the platform-wide point amounts applied when a
// document does not override them.
type PointsSettings struct {
	DownloadCost int64     `json:"downloadCost"`
	UploadReward int64     `json:"uploadReward"`
	UpdatedByID  string    `json:"updatedById,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
