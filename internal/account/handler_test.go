package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/documents"
	"docshare-backend/internal/ledger"
	"docshare-backend/internal/moderation"
	"docshare-backend/internal/sharelinks"
)

func newClaimRouter(t *testing.T, docRepo *documents.MemoryRepo, ledgerSvc *ledger.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	linkSvc := sharelinks.NewService(sharelinks.NewMemoryRepo(), time.Hour)
	handler := NewHandler(NewService(docRepo, ledgerSvc, linkSvc))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func TestClaimGuestMigratesDocumentsAndPoints(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	ledgerSvc := ledger.NewService()
	router := newClaimRouter(t, docRepo, ledgerSvc)

	guestID := "11111111-1111-1111-1111-111111111111"
	guestUserID := "guest:" + guestID

	doc := documents.Document{
		ID:               "doc-1",
		UploaderID:       guestUserID,
		Title:            "notes",
		FileName:         "notes.pdf",
		MimeType:         "application/pdf",
		SizeBytes:        123,
		ModerationStatus: moderation.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if _, err := ledgerSvc.Earn(context.Background(), guestUserID, 25, ledger.ReasonUploadReward, doc.ID); err != nil {
		t.Fatalf("fund guest: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	docs, err := docRepo.ListByUploader(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 migrated doc, got %d", len(docs))
	}

	authedBalance, err := ledgerSvc.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("authed balance: %v", err)
	}
	if authedBalance != 25 {
		t.Fatalf("expected claimed balance of 25, got %d", authedBalance)
	}
	guestBalance, err := ledgerSvc.GetBalance(context.Background(), guestUserID)
	if err != nil {
		t.Fatalf("guest balance: %v", err)
	}
	if guestBalance != 0 {
		t.Fatalf("expected drained guest balance, got %d", guestBalance)
	}
}

func TestClaimGuestIdempotentAndIsolated(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	ledgerSvc := ledger.NewService()
	router := newClaimRouter(t, docRepo, ledgerSvc)

	guestID := "22222222-2222-2222-2222-222222222222"
	guestUserID := "guest:" + guestID

	doc := documents.Document{
		ID:               "doc-2",
		UploaderID:       guestUserID,
		Title:            "report",
		FileName:         "report.pdf",
		MimeType:         "application/pdf",
		SizeBytes:        123,
		ModerationStatus: moderation.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
		req.Header.Set("X-Guest-Id", guestID)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("call %d: expected status 200, got %d", i+1, resp.Code)
		}
	}

	docs, err := docRepo.ListByUploader(context.Background(), "user-2", 10, 0)
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no docs for other user, got %d", len(docs))
	}
}

func TestDeleteAccountRemovesDocumentsAndRevokesLinks(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	linkRepo := sharelinks.NewMemoryRepo()
	linkSvc := sharelinks.NewService(linkRepo, time.Hour)

	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewService(docRepo, ledger.NewService(), linkSvc))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	doc := documents.Document{
		ID:               "doc-9",
		UploaderID:       "user-1",
		Title:            "draft",
		FileName:         "draft.pdf",
		MimeType:         "application/pdf",
		ModerationStatus: moderation.StatusApproved,
		IsPublic:         true,
		CreatedAt:        time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	link, err := linkSvc.Regenerate(context.Background(), doc.ID, "user-1")
	if err != nil {
		t.Fatalf("mint share link: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	if _, err := docRepo.GetByID(context.Background(), doc.ID); err == nil {
		t.Fatal("expected document to be gone after deletion")
	}
	valid, err := linkSvc.Validate(context.Background(), doc.ID, link.Token)
	if err != nil {
		t.Fatalf("validate link: %v", err)
	}
	if valid {
		t.Fatal("expected share link to be revoked after deletion")
	}
}

func TestClaimGuestRejectsGuestCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	linkSvc := sharelinks.NewService(sharelinks.NewMemoryRepo(), time.Hour)
	handler := NewHandler(NewService(documents.NewMemoryRepo(), ledger.NewService(), linkSvc))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "guest:33333333-3333-3333-3333-333333333333")
		c.Set("isGuest", true)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", "33333333-3333-3333-3333-333333333333")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestClaimGuestValidatesHeader(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	router := newClaimRouter(t, docRepo, ledger.NewService())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing header, got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req2.Header.Set("X-Guest-Id", "not-a-uuid")
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad guest id, got %d", resp2.Code)
	}
}
