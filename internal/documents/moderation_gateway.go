package documents

import (
	"context"
	"errors"

	"docshare-backend/internal/moderation"
)

// ModerationGateway adapts a DocumentsRepo to the moderation package's
// gateway interface.
type ModerationGateway struct {
	Repo DocumentsRepo
}

// NewModerationGateway constructs a ModerationGateway.
func NewModerationGateway(repo DocumentsRepo) *ModerationGateway {
	return &ModerationGateway{Repo: repo}
}

func (g *ModerationGateway) GetForModeration(ctx context.Context, documentID string) (moderation.DocumentInfo, error) {
	doc, err := g.Repo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return moderation.DocumentInfo{}, moderation.ErrNotFound
		}
		return moderation.DocumentInfo{}, err
	}
	return toModerationInfo(doc), nil
}

func (g *ModerationGateway) SetModerationStatus(ctx context.Context, documentID string, status moderation.Status, reason string) error {
	err := g.Repo.SetModerationStatus(ctx, documentID, status, reason)
	if errors.Is(err, ErrNotFound) {
		return moderation.ErrNotFound
	}
	return err
}

func (g *ModerationGateway) ListByStatus(ctx context.Context, status moderation.Status, page, limit int) ([]moderation.DocumentInfo, int64, error) {
	offset := (page - 1) * limit
	docs, total, err := g.Repo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]moderation.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toModerationInfo(doc))
	}
	return out, total, nil
}

func toModerationInfo(doc Document) moderation.DocumentInfo {
	return moderation.DocumentInfo{
		ID:         doc.ID,
		UploaderID: doc.UploaderID,
		Title:      doc.Title,
		IsPublic:   doc.IsPublic,
		Status:     doc.ModerationStatus,
		Reason:     doc.ModerationReason,
	}
}

var _ moderation.DocumentGateway = (*ModerationGateway)(nil)
