package ledger

import "time"

// Transaction types.
const (
	TypeEarn   = "EARN"
	TypeSpend  = "SPEND"
	TypeAdjust = "ADJUST"
)

// Transaction reasons.
const (
	ReasonUploadReward   = "UPLOAD_REWARD"
	ReasonDownloadCost   = "DOWNLOAD_COST"
	ReasonDownloadReward = "DOWNLOAD_REWARD"
	ReasonAdminAdjust    = "ADMIN_ADJUST"
)

// PointTransaction is one immutable row of the append-only points ledger.
// Amount is signed: negative for spends, positive for earns and upward adjusts.
// BalanceAfter snapshots the user's balance immediately after the row was written.
type PointTransaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	DocumentID    string    `json:"documentId,omitempty"`
	Amount        int64     `json:"amount"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason"`
	BalanceAfter  int64     `json:"balanceAfter"`
	PerformedByID string    `json:"performedById,omitempty"`
	IsBypass      bool      `json:"isBypass"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Page is one page of a user's transaction history, newest first.
type Page struct {
	Transactions []PointTransaction `json:"transactions"`
	Page         int                `json:"page"`
	Limit        int                `json:"limit"`
	Total        int64              `json:"total"`
}
