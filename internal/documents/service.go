package documents

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"docshare-backend/internal/extract"
	"docshare-backend/internal/ledger"
	"docshare-backend/internal/moderation"
	"docshare-backend/internal/settings"
	"docshare-backend/internal/shared/storage/object"
	"docshare-backend/internal/shared/telemetry"
)

const previewTextLimit = 400

// Service contains business logic for documents.
type Service struct {
	Store    object.ObjectStore
	Repo     DocumentsRepo
	Ledger   *ledger.Service
	Settings *settings.Service
}

// NewService constructs a Service.
func NewService(store object.ObjectStore, repo DocumentsRepo, ledgerSvc *ledger.Service, settingsSvc *settings.Service) *Service {
	return &Service{Store: store, Repo: repo, Ledger: ledgerSvc, Settings: settingsSvc}
}

// UploadInput carries the caller-provided fields of a new document.
type UploadInput struct {
	Title        string
	Description  string
	FileName     string
	IsPublic     bool
	DownloadCost *int64
}

// Upload saves the file to object storage, records the document in PENDING
// moderation state, and credits the uploader the upload reward. The reward is
// best-effort: a ledger failure is logged and does not fail the upload.
func (s *Service) Upload(ctx context.Context, uploaderID string, in UploadInput, r io.Reader) (Document, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.FileName == "" {
		return Document{}, ErrInvalidInput
	}
	if in.DownloadCost != nil && *in.DownloadCost < 0 {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, uploaderID, in.FileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:               uuid.NewString(),
		UploaderID:       uploaderID,
		Title:            in.Title,
		Description:      strings.TrimSpace(in.Description),
		FileName:         in.FileName,
		MimeType:         mimeType,
		SizeBytes:        size,
		StorageKey:       storageKey,
		IsPublic:         in.IsPublic,
		ModerationStatus: moderation.StatusPending,
		DownloadCost:     in.DownloadCost,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	doc.PageCount, doc.PreviewText = s.extractPreview(ctx, storageKey, mimeType, in.FileName)

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	s.rewardUpload(ctx, doc)
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, documentID)
}

// GetOwned returns a document after verifying ownership.
func (s *Service) GetOwned(ctx context.Context, uploaderID, documentID string) (Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.UploaderID != uploaderID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// ListMine lists the caller's documents.
func (s *Service) ListMine(ctx context.Context, uploaderID string, limit, offset int) ([]Document, error) {
	return s.Repo.ListByUploader(ctx, uploaderID, limit, offset)
}

// ListPublic lists approved public documents.
func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]Document, error) {
	return s.Repo.ListPublic(ctx, limit, offset)
}

// UpdateMetadata changes title, description and the download cost override.
// Metadata edits do not touch the moderation state.
func (s *Service) UpdateMetadata(ctx context.Context, uploaderID, documentID string, in UploadInput) (Document, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Document{}, ErrInvalidInput
	}
	if in.DownloadCost != nil && *in.DownloadCost < 0 {
		return Document{}, ErrInvalidInput
	}

	doc, err := s.GetOwned(ctx, uploaderID, documentID)
	if err != nil {
		return Document{}, err
	}
	doc.Title = in.Title
	doc.Description = strings.TrimSpace(in.Description)
	doc.DownloadCost = in.DownloadCost
	if err := s.Repo.UpdateMetadata(ctx, doc); err != nil {
		return Document{}, err
	}
	return s.Get(ctx, documentID)
}

// ReplaceFile swaps the document's stored file. Replacing files always forces
// the document back to PENDING moderation, regardless of its current state.
func (s *Service) ReplaceFile(ctx context.Context, uploaderID, documentID, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.GetOwned(ctx, uploaderID, documentID)
	if err != nil {
		return Document{}, err
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, uploaderID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc.FileName = fileName
	doc.MimeType = mimeType
	doc.SizeBytes = size
	doc.StorageKey = storageKey
	doc.ModerationStatus = moderation.Next(doc.ModerationStatus, moderation.EventFilesReplaced)
	doc.PageCount, doc.PreviewText = s.extractPreview(ctx, storageKey, mimeType, fileName)

	if err := s.Repo.ReplaceFile(ctx, doc); err != nil {
		return Document{}, err
	}
	return s.Get(ctx, documentID)
}

// SetVisibility flips isPublic. Entering public visibility forces the
// document back to PENDING; leaving it does not change the moderation state.
func (s *Service) SetVisibility(ctx context.Context, uploaderID, documentID string, isPublic bool) (Document, error) {
	doc, err := s.GetOwned(ctx, uploaderID, documentID)
	if err != nil {
		return Document{}, err
	}

	status := doc.ModerationStatus
	if isPublic && !doc.IsPublic {
		status = moderation.Next(status, moderation.EventMadePublic)
	}
	if err := s.Repo.SetVisibility(ctx, documentID, isPublic, status); err != nil {
		return Document{}, err
	}
	return s.Get(ctx, documentID)
}

// Delete removes the caller's document.
func (s *Service) Delete(ctx context.Context, uploaderID, documentID string) error {
	if _, err := s.GetOwned(ctx, uploaderID, documentID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, documentID)
}

func (s *Service) rewardUpload(ctx context.Context, doc Document) {
	if s.Ledger == nil || s.Settings == nil {
		return
	}
	ps, err := s.Settings.Get(ctx)
	if err != nil {
		telemetry.Error("upload reward settings lookup failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
		return
	}
	if ps.UploadReward <= 0 {
		return
	}
	if _, err := s.Ledger.Earn(ctx, doc.UploaderID, ps.UploadReward, ledger.ReasonUploadReward, doc.ID); err != nil {
		telemetry.Error("upload reward failed", map[string]any{
			"documentId": doc.ID,
			"uploaderId": doc.UploaderID,
			"error":      err.Error(),
		})
	}
}

func (s *Service) extractPreview(ctx context.Context, storageKey, mimeType, fileName string) (int, string) {
	pages, err := extract.PageCount(ctx, s.Store, storageKey, mimeType)
	if err != nil {
		pages = 0
	}
	text, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName)
	if err != nil {
		return pages, ""
	}
	text = strings.TrimSpace(text)
	if len(text) > previewTextLimit {
		text = text[:previewTextLimit]
	}
	return pages, text
}
