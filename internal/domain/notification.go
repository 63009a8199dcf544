package domain

import "context"

// EventInvitationMessageKey identifies the invite notification template.
const EventInvitationMessageKey = "event_invitation"

// NotificationPayload references the owning post for an invite notification.
type NotificationPayload struct {
	TopicID    int64
	PostNumber int
	TopicTitle string
	AuthorName string
	MessageKey string
}

// NotificationChannel delivers one notification to one user (infrastructure
// port; the dispatcher guarantees at-most-once per invitee row).
type NotificationChannel interface {
	Send(ctx context.Context, userID int64, payload *NotificationPayload) error
}

// RealtimePublisher fans an event change out to live subscribers of the
// owning topic's channel.
type RealtimePublisher interface {
	Publish(ctx context.Context, topicID, eventID int64) error
}
