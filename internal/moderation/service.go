package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"docshare-backend/internal/queue"
	"docshare-backend/internal/shared/telemetry"
)

// ErrReasonRequired indicates a rejection without a reason.
var ErrReasonRequired = errors.New("rejection reason is required")

// Service applies moderator decisions to documents and notifies downstream
// consumers. Notification failures are logged and swallowed: the decision is
// committed before the event is sent and must not be invalidated by it.
type Service struct {
	Docs  DocumentGateway
	Queue queue.Client
}

// NewService constructs a Service. A nil queue client disables notifications.
func NewService(docs DocumentGateway, queueClient queue.Client) *Service {
	if queueClient == nil {
		queueClient = queue.NopClient{}
	}
	return &Service{Docs: docs, Queue: queueClient}
}

// Approve moves the document to APPROVED.
func (s *Service) Approve(ctx context.Context, documentID, adminID, notes string) (DocumentInfo, error) {
	return s.decide(ctx, documentID, adminID, EventApprove, notes)
}

// Reject moves the document to REJECTED. A reason is required.
func (s *Service) Reject(ctx context.Context, documentID, adminID, reason string) (DocumentInfo, error) {
	if strings.TrimSpace(reason) == "" {
		return DocumentInfo{}, ErrReasonRequired
	}
	return s.decide(ctx, documentID, adminID, EventReject, reason)
}

// ListPending returns one page of documents awaiting review.
func (s *Service) ListPending(ctx context.Context, page, limit int) ([]DocumentInfo, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Docs.ListByStatus(ctx, StatusPending, page, limit)
}

func (s *Service) decide(ctx context.Context, documentID, adminID string, event Event, reason string) (DocumentInfo, error) {
	doc, err := s.Docs.GetForModeration(ctx, documentID)
	if err != nil {
		return DocumentInfo{}, err
	}

	next := Next(doc.Status, event)
	if err := s.Docs.SetModerationStatus(ctx, documentID, next, reason); err != nil {
		return DocumentInfo{}, err
	}
	doc.Status = next
	doc.Reason = reason

	s.notify(ctx, doc, adminID, event, reason)
	return doc, nil
}

func (s *Service) notify(ctx context.Context, doc DocumentInfo, adminID string, event Event, reason string) {
	eventName := queueEventName(event)
	msg := queue.Message{
		Event:      eventName,
		DocumentID: doc.ID,
		UploaderID: doc.UploaderID,
		ActorID:    adminID,
		Reason:     reason,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		telemetry.Error("moderation notify failed", map[string]any{
			"documentId": doc.ID,
			"event":      eventName,
			"error":      err.Error(),
		})
	}
}

func queueEventName(event Event) string {
	if event == EventReject {
		return queue.EventDocumentRejected
	}
	return queue.EventDocumentApproved
}
