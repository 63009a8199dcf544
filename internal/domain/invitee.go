package domain

import (
	"context"
	"fmt"
	"time"
)

// InviteeStatus is an invitee's attendance state. The numeric order matters:
// the attendance preview sorts ascending, so Going surfaces first.
type InviteeStatus int

const (
	InviteeGoing      InviteeStatus = 0
	InviteeInterested InviteeStatus = 1
	InviteeNotGoing   InviteeStatus = 2
)

// ParseInviteeStatus maps a textual attendance status to its InviteeStatus.
func ParseInviteeStatus(s string) (InviteeStatus, error) {
	switch s {
	case "going":
		return InviteeGoing, nil
	case "interested":
		return InviteeInterested, nil
	case "not_going":
		return InviteeNotGoing, nil
	}
	return InviteeGoing, fmt.Errorf("unknown attendance status %q: %w", s, ErrInvalidInput)
}

func (s InviteeStatus) String() string {
	switch s {
	case InviteeInterested:
		return "interested"
	case InviteeNotGoing:
		return "not_going"
	}
	return "going"
}

// Invitee is one participant row owned by exactly one event. Deleting the
// event deletes its invitees.
// swagger:model Invitee
type Invitee struct {
	ID        int64         `json:"id"`
	PostID    int64         `json:"post_id"`
	UserID    int64         `json:"user_id"`
	Status    InviteeStatus `json:"status"`
	Notified  bool          `json:"notified"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// InviteeRepository defines storage operations for invitees. Rows are unique
// on (post_id, user_id); Create reports whether a new row was inserted so a
// concurrent duplicate is "already present, skip" rather than an error.
type InviteeRepository interface {
	Create(ctx context.Context, inv *Invitee) (bool, error)
	GetByPostAndUser(ctx context.Context, postID, userID int64) (*Invitee, error)
	// ListByPostID returns the event's invitees ordered by (status, user_id).
	ListByPostID(ctx context.Context, postID int64) ([]*Invitee, error)
	ListUnnotified(ctx context.Context, postID int64) ([]*Invitee, error)
	// DeleteWhereUserNotIn removes invitees outside the given user set.
	// An empty set removes every invitee of the event.
	DeleteWhereUserNotIn(ctx context.Context, postID int64, userIDs []int64) error
	DeleteByPostID(ctx context.Context, postID int64) error
	// MarkNotified claims the row for notification: it flips notified to
	// true only if it is still false and reports whether this call won the
	// claim. At-most-once dispatch hangs on this.
	MarkNotified(ctx context.Context, postID, userID int64) (bool, error)
	// UpsertAttendance records a self-registered attendance status. The row
	// is created if missing and always ends up notified.
	UpsertAttendance(ctx context.Context, postID, userID int64, status InviteeStatus) (*Invitee, error)
}
