package authz

import (
	"context"
	"testing"
	"time"

	"docshare-backend/internal/documents"
	"docshare-backend/internal/moderation"
	"docshare-backend/internal/sharelinks"
	"docshare-backend/internal/users"
)

func newAuthorizer() (*Authorizer, *sharelinks.Service) {
	links := sharelinks.NewService(sharelinks.NewMemoryRepo(), time.Hour)
	return NewAuthorizer(links), links
}

func publicApprovedDoc() documents.Document {
	return documents.Document{
		ID:               "doc-1",
		UploaderID:       "owner-1",
		IsPublic:         true,
		ModerationStatus: moderation.StatusApproved,
	}
}

func TestOwnerAlwaysAllowedWithBypass(t *testing.T) {
	authorizer, _ := newAuthorizer()
	doc := publicApprovedDoc()
	doc.IsPublic = false
	doc.ModerationStatus = moderation.StatusRejected

	decision, err := authorizer.Authorize(context.Background(), doc, Requester{ID: "owner-1"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !decision.Allowed || !decision.BypassCost {
		t.Fatalf("expected owner allow+bypass, got %+v", decision)
	}
}

func TestAdminAllowedWithBypass(t *testing.T) {
	authorizer, _ := newAuthorizer()
	doc := publicApprovedDoc()
	doc.IsPublic = false

	decision, err := authorizer.Authorize(context.Background(), doc, Requester{ID: "admin-1", Role: users.RoleAdmin})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !decision.Allowed || !decision.BypassCost {
		t.Fatalf("expected admin allow+bypass, got %+v", decision)
	}
}

func TestShareTokenAllowsButDoesNotWaiveCost(t *testing.T) {
	authorizer, links := newAuthorizer()
	doc := publicApprovedDoc()
	doc.IsPublic = false

	link, err := links.Regenerate(context.Background(), doc.ID, "owner-1")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	decision, err := authorizer.Authorize(context.Background(), doc, Requester{ID: "guest-1", ShareToken: link.Token})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected share token to allow, got %+v", decision)
	}
	if decision.BypassCost {
		t.Fatal("share access must not waive the cost")
	}
}

func TestInvalidShareTokenFallsThroughToVisibility(t *testing.T) {
	authorizer, _ := newAuthorizer()
	doc := publicApprovedDoc()
	doc.IsPublic = false

	decision, err := authorizer.Authorize(context.Background(), doc, Requester{ID: "guest-1", ShareToken: "bogus"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny, got %+v", decision)
	}
	if decision.Reason != ReasonPrivateDocument {
		t.Fatalf("expected %q, got %q", ReasonPrivateDocument, decision.Reason)
	}
}

func TestPublicApprovedAllowedForAnyone(t *testing.T) {
	authorizer, _ := newAuthorizer()

	decision, err := authorizer.Authorize(context.Background(), publicApprovedDoc(), Requester{ID: "guest-1"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !decision.Allowed || decision.BypassCost {
		t.Fatalf("expected allow without bypass, got %+v", decision)
	}
}

func TestPublicUnapprovedDeniedForAnonymousAllowedForOwner(t *testing.T) {
	authorizer, _ := newAuthorizer()
	doc := publicApprovedDoc()
	doc.ModerationStatus = moderation.StatusPending

	decision, err := authorizer.Authorize(context.Background(), doc, Requester{ID: "guest-1"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny, got %+v", decision)
	}
	if decision.Reason != ReasonPendingModeration {
		t.Fatalf("expected %q, got %q", ReasonPendingModeration, decision.Reason)
	}

	decision, err = authorizer.Authorize(context.Background(), doc, Requester{ID: "owner-1"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !decision.Allowed || !decision.BypassCost {
		t.Fatalf("expected owner allow+bypass, got %+v", decision)
	}
}

func TestPublicRejectedDenied(t *testing.T) {
	authorizer, _ := newAuthorizer()
	doc := publicApprovedDoc()
	doc.ModerationStatus = moderation.StatusRejected

	decision, err := authorizer.Authorize(context.Background(), doc, Requester{ID: "guest-1"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonRejected {
		t.Fatalf("expected rejected deny, got %+v", decision)
	}
}

func TestPrivateDocumentDeniedForNonOwner(t *testing.T) {
	authorizer, _ := newAuthorizer()
	doc := publicApprovedDoc()
	doc.IsPublic = false

	decision, err := authorizer.Authorize(context.Background(), doc, Requester{ID: "user-2"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonPrivateDocument {
		t.Fatalf("expected private deny, got %+v", decision)
	}
}
