package moderation

// Status is a document's moderation state. Every document entering public
// visibility starts at StatusPending and stays out of public reach until a
// moderator approves it.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Valid reports whether s is a known moderation status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Event is a moderation-relevant action applied to a document.
type Event string

const (
	// EventApprove and EventReject are explicit moderator actions.
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	// EventFilesReplaced fires when a document's files change.
	EventFilesReplaced Event = "files_replaced"
	// EventMadePublic fires when isPublic flips from false to true. Flipping
	// back to private does not change moderation status.
	EventMadePublic Event = "made_public"
)

// Next returns the moderation status after applying an event. Approve and
// reject apply from any state; replacing files or entering public visibility
// forces the document back to pending, regardless of current state.
func Next(current Status, event Event) Status {
	switch event {
	case EventApprove:
		return StatusApproved
	case EventReject:
		return StatusRejected
	case EventFilesReplaced, EventMadePublic:
		return StatusPending
	}
	return current
}

// PubliclyVisible reports whether the status alone permits public access.
func PubliclyVisible(s Status) bool {
	return s == StatusApproved
}
