package queue

import "encoding/json"

// Event names carried by queue messages.
const (
	EventDocumentApproved = "document.approved"
	EventDocumentRejected = "document.rejected"
)

// Message is the payload sent to downstream notification consumers.
type Message struct {
	Event      string `json:"event"`
	DocumentID string `json:"documentId"`
	UploaderID string `json:"uploaderId"`
	ActorID    string `json:"actorId"`
	Reason     string `json:"reason,omitempty"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
