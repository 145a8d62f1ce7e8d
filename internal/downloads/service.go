package downloads

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docshare-backend/internal/authz"
	"docshare-backend/internal/documents"
	"docshare-backend/internal/ledger"
	"docshare-backend/internal/settings"
	"docshare-backend/internal/shared/metrics"
	"docshare-backend/internal/shared/storage/object"
	"docshare-backend/internal/shared/telemetry"
)

// Ledger is the slice of the points ledger the download flow needs: the
// downloader's charge and the uploader's reward.
type Ledger interface {
	Spend(ctx context.Context, userID string, amount int64, reason, documentID string, bypass bool) (ledger.PointTransaction, error)
	Earn(ctx context.Context, userID string, amount int64, reason, documentID string) (int64, error)
}

// rewardEarner is an optional Repo extension that claims the reward and writes
// the uploader's earn in one transaction. The Postgres repo implements it;
// without it the claim and the earn are separate writes with a compensating
// release on earn failure.
type rewardEarner interface {
	ClaimRewardEarn(ctx context.Context, d Download, uploaderID string) (bool, error)
}

// Service orchestrates a download attempt end to end: authorize, charge the
// downloader, issue the signed file URL, and later reward the uploader exactly
// once per (document, downloader) pair. Reward issuance is a secondary side
// effect: its failures are logged and never invalidate a completed download.
type Service struct {
	Repo       Repo
	Docs       documents.DocumentsRepo
	Authorizer *authz.Authorizer
	Ledger     Ledger
	Settings   *settings.Service
	Store      object.ObjectStore
	URLTTL     time.Duration
}

// NewService constructs a Service.
func NewService(repo Repo, docs documents.DocumentsRepo, authorizer *authz.Authorizer, ledgerSvc Ledger, settingsSvc *settings.Service, store object.ObjectStore, urlTTL time.Duration) *Service {
	return &Service{
		Repo:       repo,
		Docs:       docs,
		Authorizer: authorizer,
		Ledger:     ledgerSvc,
		Settings:   settingsSvc,
		Store:      store,
		URLTTL:     urlTTL,
	}
}

// InitDownload authorizes the attempt, charges the downloader and returns a
// signed URL. A denial aborts before any ledger or download row mutation. An
// insufficient balance finalizes the attempt as failed with nothing debited.
func (s *Service) InitDownload(ctx context.Context, documentID string, req authz.Requester, ipAddress string) (InitResult, error) {
	started := time.Now()
	defer func() {
		metrics.ObserveDownloadInitMs(float64(time.Since(started)) / float64(time.Millisecond))
	}()

	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return InitResult{}, err
	}

	decision, err := s.Authorizer.Authorize(ctx, doc, req)
	if err != nil {
		return InitResult{}, err
	}
	if !decision.Allowed {
		return InitResult{}, &AuthorizationError{Reason: decision.Reason}
	}

	cost, err := s.resolveCost(ctx, doc)
	if err != nil {
		return InitResult{}, err
	}

	attempt := Download{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		UserID:     req.ID,
		IPAddress:  ipAddress,
		Bypass:     decision.BypassCost,
		CreatedAt:  time.Now().UTC(),
	}
	if !decision.BypassCost {
		attempt.CostPaid = cost
	}
	if err := s.Repo.Create(ctx, attempt); err != nil {
		return InitResult{}, err
	}

	if cost > 0 {
		if _, err := s.Ledger.Spend(ctx, req.ID, cost, ledger.ReasonDownloadCost, doc.ID, decision.BypassCost); err != nil {
			if markErr := s.Repo.MarkFailed(ctx, attempt.ID); markErr != nil {
				telemetry.Error("download mark failed", map[string]any{
					"download_id": attempt.ID,
					"error":       markErr.Error(),
				})
			}
			metrics.IncDownloadsFailed()
			return InitResult{}, err
		}
	}

	if err := s.Repo.MarkSuccess(ctx, attempt.ID); err != nil {
		return InitResult{}, err
	}
	if err := s.Docs.IncrementDownloadCount(ctx, doc.ID); err != nil {
		telemetry.Error("download count increment failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
	}

	// The spend is committed; URL issuance happens outside any ledger lock
	// and a failure here is not refunded.
	url, err := s.Store.SignedURL(ctx, doc.StorageKey, s.URLTTL)
	if err != nil {
		return InitResult{}, err
	}

	metrics.IncDownloadsInitiated()
	return InitResult{
		DownloadID: attempt.ID,
		URL:        url,
		ExpiresAt:  time.Now().UTC().Add(s.URLTTL),
		Cost:       attempt.CostPaid,
		Bypass:     decision.BypassCost,
	}, nil
}

// ConfirmDownload runs the reward step after the client reports completion.
// The uploader earns the amount the downloader actually paid, at most once per
// (document, downloader) pair; repeat confirmations are recorded but pay
// nothing. Confirm is idempotent and never fails a completed download over a
// reward problem.
func (s *Service) ConfirmDownload(ctx context.Context, downloadID, requesterID string) (Download, error) {
	attempt, err := s.Repo.GetByID(ctx, downloadID)
	if err != nil {
		return Download{}, err
	}
	if attempt.UserID != requesterID {
		return Download{}, ErrNotFound
	}
	if !attempt.Success {
		return Download{}, ErrConflict
	}
	if attempt.ConfirmedAt == nil {
		if err := s.Repo.MarkConfirmed(ctx, attempt.ID); err != nil {
			return Download{}, err
		}
		now := time.Now().UTC()
		attempt.ConfirmedAt = &now
	}
	if attempt.UploaderRewarded {
		return attempt, nil
	}

	doc, err := s.Docs.GetByID(ctx, attempt.DocumentID)
	if err != nil {
		return Download{}, err
	}

	// Self-downloads and zero-paid (bypassed or free) downloads never reward.
	if doc.UploaderID == attempt.UserID || attempt.CostPaid <= 0 {
		return attempt, nil
	}

	if re, ok := s.Repo.(rewardEarner); ok {
		claimed, err := re.ClaimRewardEarn(ctx, attempt, doc.UploaderID)
		if err != nil {
			telemetry.Error("uploader reward failed", map[string]any{
				"download_id": attempt.ID,
				"documentId":  doc.ID,
				"uploaderId":  doc.UploaderID,
				"error":       err.Error(),
			})
			return attempt, nil
		}
		if claimed {
			attempt.UploaderRewarded = true
			metrics.IncRewardsGranted()
		}
		return attempt, nil
	}

	claimed, err := s.Repo.ClaimReward(ctx, attempt.ID, attempt.DocumentID, attempt.UserID)
	if err != nil {
		return Download{}, err
	}
	if !claimed {
		return attempt, nil
	}

	if _, err := s.Ledger.Earn(ctx, doc.UploaderID, attempt.CostPaid, ledger.ReasonDownloadReward, doc.ID); err != nil {
		telemetry.Error("uploader reward failed", map[string]any{
			"download_id": attempt.ID,
			"documentId":  doc.ID,
			"uploaderId":  doc.UploaderID,
			"error":       err.Error(),
		})
		if releaseErr := s.Repo.ReleaseReward(ctx, attempt.ID); releaseErr != nil {
			telemetry.Error("reward release failed", map[string]any{
				"download_id": attempt.ID,
				"error":       releaseErr.Error(),
			})
		}
		return attempt, nil
	}

	attempt.UploaderRewarded = true
	metrics.IncRewardsGranted()
	return attempt, nil
}

// CancelDownload finalizes an unconfirmed attempt as failed. The committed
// spend is not reversed; cancellation only suppresses reward issuance. Once
// the attempt has been confirmed the cancellation window is closed.
func (s *Service) CancelDownload(ctx context.Context, downloadID, requesterID string) error {
	attempt, err := s.Repo.GetByID(ctx, downloadID)
	if err != nil {
		return err
	}
	if attempt.UserID != requesterID {
		return ErrNotFound
	}
	if attempt.ConfirmedAt != nil || attempt.UploaderRewarded {
		return ErrConflict
	}
	return s.Repo.MarkFailed(ctx, downloadID)
}

func (s *Service) resolveCost(ctx context.Context, doc documents.Document) (int64, error) {
	if doc.DownloadCost != nil {
		return *doc.DownloadCost, nil
	}
	ps, err := s.Settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	return ps.DownloadCost, nil
}
