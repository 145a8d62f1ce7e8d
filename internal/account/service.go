package account

import (
	"context"
	"fmt"

	"docshare-backend/internal/documents"
	"docshare-backend/internal/ledger"
	"docshare-backend/internal/sharelinks"
	"docshare-backend/internal/shared/telemetry"
)

// ClaimResult reports what was migrated from a guest identity to an
// authenticated account.
type ClaimResult struct {
	MigratedDocuments int   `json:"migratedDocuments"`
	MigratedPoints    int64 `json:"migratedPoints"`
}

type guestDocClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

// Service migrates guest-owned documents and any guest point balance to
// the authenticated user that presents the matching guest id.
type Service struct {
	DocRepo documents.DocumentsRepo
	Ledger  *ledger.Service
	Links   *sharelinks.Service
}

func NewService(docRepo documents.DocumentsRepo, ledgerSvc *ledger.Service, links *sharelinks.Service) *Service {
	return &Service{DocRepo: docRepo, Ledger: ledgerSvc, Links: links}
}

// ClaimGuest reassigns every document owned by the guest identity to the
// authenticated user, then moves the guest's point balance over. Balance
// migration is recorded as a pair of adjustments so the transaction log
// stays complete for both identities.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	var res ClaimResult

	claimer, ok := s.DocRepo.(guestDocClaimer)
	if !ok {
		return res, fmt.Errorf("documents repo does not support guest claims")
	}

	moved, err := claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return res, fmt.Errorf("claim guest documents: %w", err)
	}
	res.MigratedDocuments = moved

	points, err := s.claimBalance(ctx, guestUserID, authedUserID)
	if err != nil {
		return res, err
	}
	res.MigratedPoints = points

	return res, nil
}

// DeleteResult reports what account deletion removed.
type DeleteResult struct {
	DeletedDocuments int `json:"deletedDocuments"`
}

// DeleteAccount removes the user's documents and revokes their share links.
// Ledger rows are append-only and stay behind as the audit trail. Share link
// revocation is best effort: a failed revoke is logged and deletion proceeds,
// since deleted documents are unreachable through the download path anyway.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (DeleteResult, error) {
	var res DeleteResult

	if s.Links != nil {
		docs, err := s.DocRepo.ListByUploader(ctx, userID, 1000, 0)
		if err != nil {
			return res, fmt.Errorf("list documents: %w", err)
		}
		for _, doc := range docs {
			if _, err := s.Links.Revoke(ctx, doc.ID); err != nil {
				telemetry.Error("account.delete.revoke_links_failed", map[string]any{
					"document_id": doc.ID,
					"error":       err.Error(),
				})
			}
		}
	}

	deleted, err := s.DocRepo.DeleteAllByUploader(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("delete documents: %w", err)
	}
	res.DeletedDocuments = deleted
	return res, nil
}

func (s *Service) claimBalance(ctx context.Context, guestUserID, authedUserID string) (int64, error) {
	if s.Ledger == nil {
		return 0, nil
	}
	balance, err := s.Ledger.GetBalance(ctx, guestUserID)
	if err != nil {
		return 0, fmt.Errorf("read guest balance: %w", err)
	}
	if balance <= 0 {
		return 0, nil
	}
	if _, err := s.Ledger.Adjust(ctx, authedUserID, guestUserID, -balance, "guest balance claimed"); err != nil {
		return 0, fmt.Errorf("debit guest balance: %w", err)
	}
	if _, err := s.Ledger.Adjust(ctx, authedUserID, authedUserID, balance, "guest balance claimed"); err != nil {
		return 0, fmt.Errorf("credit claimed balance: %w", err)
	}
	return balance, nil
}
