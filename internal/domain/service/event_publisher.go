package service

import "context"

// PrayerEvent is the message published when a prayer request is submitted.
// The worker consumes it to notify the intercessory team.
type PrayerEvent struct {
	PrayerID       string `json:"prayer_id"`
	RequestID      string `json:"request_id,omitempty"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	SubmitterName  string `json:"submitter_name"`
	SubmitterEmail string `json:"submitter_email"`
	Private        bool   `json:"private"`
}

// EventPublisher publishes prayer events to the notification pipeline.
type EventPublisher interface {
	// PublishPrayerEvent publishes an event for asynchronous processing.
	PublishPrayerEvent(ctx context.Context, event *PrayerEvent) error

	// Close releases publisher resources.
	Close() error
}
