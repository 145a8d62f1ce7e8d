package queue

import "context"

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// NopClient drops every message; used when no queue is configured.
type NopClient struct{}

// Send discards the message.
func (NopClient) Send(ctx context.Context, msg Message) error {
	return nil
}

var _ Client = NopClient{}
