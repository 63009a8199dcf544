package domain

import (
	"context"
	"fmt"
	"time"
)

// EventStatus is the visibility/roster-control mode of an event.
type EventStatus int

const (
	// StatusStandalone events have no invitee concept at all.
	StatusStandalone EventStatus = 0
	// StatusPublic events accept attendance from anyone, no roster control.
	StatusPublic EventStatus = 1
	// StatusPrivate events restrict attendance to the resolved raw invitees.
	StatusPrivate EventStatus = 2
)

// ParseEventStatus maps a textual status to its EventStatus. Unknown values
// are rejected here, at the boundary, rather than at use.
func ParseEventStatus(s string) (EventStatus, error) {
	switch s {
	case "standalone":
		return StatusStandalone, nil
	case "public":
		return StatusPublic, nil
	case "private":
		return StatusPrivate, nil
	}
	return StatusStandalone, fmt.Errorf("unknown event status %q: %w", s, ErrInvalidInput)
}

func (s EventStatus) String() string {
	switch s {
	case StatusPublic:
		return "public"
	case StatusPrivate:
		return "private"
	}
	return "standalone"
}

const (
	// EventNameMinLen and EventNameMaxLen bound a non-blank event name.
	EventNameMinLen = 5
	EventNameMaxLen = 30
	// MaxRawInvitees bounds the free-text roster specification.
	MaxRawInvitees = 10
)

// Event is the scheduled occurrence attached to one post. It shares its ID
// with the owning post (1:1, not an independent sequence).
// swagger:model Event
type Event struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      *time.Time  `json:"ends_at"`
	Status      EventStatus `json:"status"`
	RawInvitees []string    `json:"raw_invitees"`
	DeletedAt   *time.Time  `json:"deleted_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks every field invariant and returns a ValidationError
// carrying all violations, or nil. A non-nil result must abort the write.
func (e *Event) Validate() error {
	var msgs []string
	if e.StartsAt.IsZero() {
		msgs = append(msgs, "starts_at is required")
	}
	if e.EndsAt != nil && !e.EndsAt.After(e.StartsAt) {
		msgs = append(msgs, "ends_at must be after starts_at")
	}
	if e.Name != "" {
		if n := len([]rune(e.Name)); n < EventNameMinLen || n > EventNameMaxLen {
			msgs = append(msgs, fmt.Sprintf("name length must be between %d and %d", EventNameMinLen, EventNameMaxLen))
		}
	}
	if len(e.RawInvitees) > MaxRawInvitees {
		msgs = append(msgs, fmt.Sprintf("raw_invitees cannot exceed %d entries", MaxRawInvitees))
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// IsExpired reports whether the event lies in the past at the given instant.
// An event without an end uses its start as the expiry boundary.
func (e *Event) IsExpired(now time.Time) bool {
	boundary := e.StartsAt
	if e.EndsAt != nil {
		boundary = *e.EndsAt
	}
	return now.After(boundary)
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	// Upsert creates the event row or updates it in place, keyed by ID.
	Upsert(ctx context.Context, event *Event) error
	GetByPostID(ctx context.Context, postID int64) (*Event, error)
	Delete(ctx context.Context, postID int64) error
}

// EventService is the core contract: the update pipeline, the attendance
// read path, and roster reconciliation.
type EventService interface {
	// UpdateFromPost re-derives the event from the post's current text.
	// Returns the resulting event, or nil if the post carries none (any
	// previously stored event is destroyed in that case).
	UpdateFromPost(ctx context.Context, post *Post) (*Event, error)
	GetByPostID(ctx context.Context, postID int64) (*Event, error)
	// MostLikelyGoing builds the bounded attendance preview for display.
	MostLikelyGoing(ctx context.Context, event *Event, userID int64, limit int) ([]*Invitee, error)
	// CanUpdateAttendance reports whether the user may self-register.
	CanUpdateAttendance(ctx context.Context, event *Event, userID int64) (bool, error)
	// UpdateAttendance self-registers the user's attendance status.
	UpdateAttendance(ctx context.Context, event *Event, userID int64, status InviteeStatus) (*Invitee, error)
	// ReconcileInvitees re-syncs stored invitees against the resolved
	// raw invitee specification and notifies newly added ones.
	ReconcileInvitees(ctx context.Context, event *Event) error
}
