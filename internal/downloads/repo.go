package downloads

import "context"

// Repo defines persistence operations for download attempts. ClaimReward must
// be atomic against concurrent confirmations: for a given (documentID, userID)
// pair, at most one row ever carries uploaderRewarded = true.
type Repo interface {
	Create(ctx context.Context, d Download) error
	GetByID(ctx context.Context, downloadID string) (Download, error)
	MarkSuccess(ctx context.Context, downloadID string) error
	MarkFailed(ctx context.Context, downloadID string) error
	MarkConfirmed(ctx context.Context, downloadID string) error
	ClaimReward(ctx context.Context, downloadID, documentID, userID string) (bool, error)
	ReleaseReward(ctx context.Context, downloadID string) error
}
