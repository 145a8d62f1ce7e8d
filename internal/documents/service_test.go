package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"docshare-backend/internal/ledger"
	"docshare-backend/internal/moderation"
	"docshare-backend/internal/settings"
)

type fakeStore struct{}

func (fakeStore) Save(ctx context.Context, userID string, fileName string, r io.Reader) (string, int64, string, error) {
	n, _ := io.Copy(io.Discard, r)
	return "objects/" + userID + "/" + fileName, n, "application/octet-stream", nil
}

func (fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (fakeStore) SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error) {
	return "https://files.example/" + storageKey + "?sig=test", nil
}

func newTestService(t *testing.T) (*Service, *ledger.Service) {
	t.Helper()
	ledgerSvc := ledger.NewService()
	return NewService(fakeStore{}, NewMemoryRepo(), ledgerSvc, settings.NewService(10, 5)), ledgerSvc
}

func TestUploadCreatesPendingDocumentAndRewardsUploader(t *testing.T) {
	svc, ledgerSvc := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", UploadInput{
		Title:    "Intro to Gardening",
		FileName: "gardening.pdf",
	}, strings.NewReader("file body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.ModerationStatus != moderation.StatusPending {
		t.Fatalf("status = %q, want %q", doc.ModerationStatus, moderation.StatusPending)
	}
	if doc.SizeBytes != int64(len("file body")) {
		t.Fatalf("size = %d, want %d", doc.SizeBytes, len("file body"))
	}

	balance, err := ledgerSvc.GetBalance(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 5 {
		t.Fatalf("uploader balance = %d, want 5", balance)
	}
}

func TestUploadValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "user-1", UploadInput{FileName: "a.pdf"}, strings.NewReader("x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty title: err = %v, want ErrInvalidInput", err)
	}

	negative := int64(-1)
	_, err := svc.Upload(ctx, "user-1", UploadInput{
		Title:        "Doc",
		FileName:     "a.pdf",
		DownloadCost: &negative,
	}, strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative cost: err = %v, want ErrInvalidInput", err)
	}
}

func TestGetOwnedRejectsOtherUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "owner", UploadInput{Title: "Mine", FileName: "mine.pdf"}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.GetOwned(ctx, "intruder", doc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetOwned(ctx, "owner", doc.ID); err != nil {
		t.Fatalf("owner GetOwned: %v", err)
	}
}

func TestReplaceFileForcesPendingModeration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "owner", UploadInput{Title: "Doc", FileName: "v1.pdf"}, strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Repo.SetModerationStatus(ctx, doc.ID, moderation.StatusApproved, ""); err != nil {
		t.Fatalf("SetModerationStatus: %v", err)
	}

	updated, err := svc.ReplaceFile(ctx, "owner", doc.ID, "v2.pdf", strings.NewReader("v2 body"))
	if err != nil {
		t.Fatalf("ReplaceFile: %v", err)
	}
	if updated.ModerationStatus != moderation.StatusPending {
		t.Fatalf("status after replace = %q, want %q", updated.ModerationStatus, moderation.StatusPending)
	}
	if updated.FileName != "v2.pdf" {
		t.Fatalf("fileName = %q, want v2.pdf", updated.FileName)
	}
	if updated.SizeBytes != int64(len("v2 body")) {
		t.Fatalf("size = %d, want %d", updated.SizeBytes, len("v2 body"))
	}
}

func TestSetVisibilityReModeratesOnlyWhenGoingPublic(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "owner", UploadInput{Title: "Doc", FileName: "doc.pdf"}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Repo.SetModerationStatus(ctx, doc.ID, moderation.StatusApproved, ""); err != nil {
		t.Fatalf("SetModerationStatus: %v", err)
	}

	public, err := svc.SetVisibility(ctx, "owner", doc.ID, true)
	if err != nil {
		t.Fatalf("SetVisibility(true): %v", err)
	}
	if !public.IsPublic || public.ModerationStatus != moderation.StatusPending {
		t.Fatalf("after going public: isPublic=%v status=%q, want true/%q", public.IsPublic, public.ModerationStatus, moderation.StatusPending)
	}

	// Approve again, then hide. Leaving public visibility keeps the status.
	if err := svc.Repo.SetModerationStatus(ctx, doc.ID, moderation.StatusApproved, ""); err != nil {
		t.Fatalf("SetModerationStatus: %v", err)
	}
	hidden, err := svc.SetVisibility(ctx, "owner", doc.ID, false)
	if err != nil {
		t.Fatalf("SetVisibility(false): %v", err)
	}
	if hidden.IsPublic || hidden.ModerationStatus != moderation.StatusApproved {
		t.Fatalf("after hiding: isPublic=%v status=%q, want false/%q", hidden.IsPublic, hidden.ModerationStatus, moderation.StatusApproved)
	}
}

func TestUpdateMetadataKeepsModerationStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "owner", UploadInput{Title: "Old Title", FileName: "doc.pdf"}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Repo.SetModerationStatus(ctx, doc.ID, moderation.StatusApproved, ""); err != nil {
		t.Fatalf("SetModerationStatus: %v", err)
	}

	cost := int64(25)
	updated, err := svc.UpdateMetadata(ctx, "owner", doc.ID, UploadInput{
		Title:        "New Title",
		Description:  "now with a description",
		DownloadCost: &cost,
	})
	if err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	if updated.Title != "New Title" {
		t.Fatalf("title = %q, want New Title", updated.Title)
	}
	if updated.DownloadCost == nil || *updated.DownloadCost != 25 {
		t.Fatalf("downloadCost = %v, want 25", updated.DownloadCost)
	}
	if updated.ModerationStatus != moderation.StatusApproved {
		t.Fatalf("status = %q, want %q", updated.ModerationStatus, moderation.StatusApproved)
	}
}

func TestDeleteRemovesOwnDocumentOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "owner", UploadInput{Title: "Doc", FileName: "doc.pdf"}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(ctx, "intruder", doc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("intruder delete: err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, "owner", doc.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
	}
}
