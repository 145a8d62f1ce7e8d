package authz

import (
	"context"

	"docshare-backend/internal/documents"
	"docshare-backend/internal/moderation"
	"docshare-backend/internal/sharelinks"
	"docshare-backend/internal/users"
)

// Denial reasons surfaced to callers.
const (
	ReasonPendingModeration = "pending moderation"
	ReasonRejected          = "rejected"
	ReasonPrivateDocument   = "private document"
)

// Requester is the principal attempting to access a document.
type Requester struct {
	ID         string
	Role       string
	ShareToken string
}

// Decision is the single authorization value computed once per access attempt
// and passed down the call chain. BypassCost marks principals that never pay
// the download cost.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	BypassCost bool   `json:"bypassCost"`
	Reason     string `json:"reason,omitempty"`
}

// Authorizer composes ownership, role, share-token and moderation checks into
// one allow/deny decision. It queries collaborators but never mutates state.
type Authorizer struct {
	Links *sharelinks.Service
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(links *sharelinks.Service) *Authorizer {
	return &Authorizer{Links: links}
}

// Authorize decides whether the requester may download the document.
// Owners and admins are always allowed and never pay. A valid share token
// allows access but does not waive the cost. Public documents require
// moderation approval; private documents admit only their owner.
func (a *Authorizer) Authorize(ctx context.Context, doc documents.Document, req Requester) (Decision, error) {
	if req.ID != "" && req.ID == doc.UploaderID {
		return Decision{Allowed: true, BypassCost: true}, nil
	}
	if req.Role == users.RoleAdmin {
		return Decision{Allowed: true, BypassCost: true}, nil
	}

	if req.ShareToken != "" && a.Links != nil {
		ok, err := a.Links.Validate(ctx, doc.ID, req.ShareToken)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return Decision{Allowed: true, BypassCost: false}, nil
		}
	}

	if doc.IsPublic {
		switch {
		case doc.ModerationStatus == moderation.StatusRejected:
			return Decision{Reason: ReasonRejected}, nil
		case !doc.IsApproved():
			return Decision{Reason: ReasonPendingModeration}, nil
		}
		return Decision{Allowed: true, BypassCost: false}, nil
	}

	return Decision{Reason: ReasonPrivateDocument}, nil
}
