package settings

import (
	"context"
	"errors"
	"testing"
)

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := NewService(10, 5)

	ps, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ps.DownloadCost != 10 || ps.UploadReward != 5 {
		t.Fatalf("expected defaults 10/5, got %d/%d", ps.DownloadCost, ps.UploadReward)
	}
}

func TestUpdateOverridesDefaults(t *testing.T) {
	svc := NewService(10, 5)
	ctx := context.Background()

	ps, err := svc.Update(ctx, "admin-1", 25, 8)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ps.DownloadCost != 25 || ps.UploadReward != 8 {
		t.Fatalf("expected 25/8, got %d/%d", ps.DownloadCost, ps.UploadReward)
	}
	if ps.UpdatedByID != "admin-1" {
		t.Fatalf("expected updatedById admin-1, got %q", ps.UpdatedByID)
	}

	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DownloadCost != 25 || got.UploadReward != 8 {
		t.Fatalf("expected stored 25/8, got %d/%d", got.DownloadCost, got.UploadReward)
	}
}

func TestUpdateRejectsNegativeAmounts(t *testing.T) {
	svc := NewService(10, 5)

	if _, err := svc.Update(context.Background(), "admin-1", -1, 5); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}
