package domain

import (
	"context"
	"time"
)

// ParsedEvent is the candidate event extracted from post text. Pointer
// fields are nil when the marker omits them; the update pipeline falls back
// to the stored event's value field by field.
type ParsedEvent struct {
	Name        *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Status      *EventStatus
	RawInvitees []string
}

// EventTextParser extracts zero or one event candidate from a post's raw
// text. (nil, nil) means the post carries no event.
type EventTextParser interface {
	Extract(ctx context.Context, raw string) (*ParsedEvent, error)
}
