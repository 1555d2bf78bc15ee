package service

import "context"

// EmailMessage is a provider-agnostic outbound email.
// Sender may be empty; transports fall back to their configured sender.
type EmailMessage struct {
	Subject    string
	Body       string
	Recipients []string
	Sender     string
	HTML       bool
}

// EmailSender delivers one message through a single transport.
type EmailSender interface {
	// Name returns the transport identifier for logs.
	Name() string

	// Send delivers the message to all recipients.
	Send(ctx context.Context, msg *EmailMessage) error
}

// EmailDispatcher delivers a message through the configured integrations,
// trying them in priority order and stopping at the first success.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, msg *EmailMessage) error
}
