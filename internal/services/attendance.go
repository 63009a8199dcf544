package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"posteventcalendar/internal/domain"
)

// CanUpdateAttendance reports whether the user may self-register attendance:
// the event is not expired, the user is not the post's author, and the event
// is public or the user is already on a private event's roster.
func (s *eventService) CanUpdateAttendance(ctx context.Context, event *domain.Event, userID int64) (bool, error) {
	if event.IsExpired(time.Now()) {
		return false, nil
	}
	post, err := s.posts.GetByID(ctx, event.ID)
	if err != nil {
		return false, fmt.Errorf("get post: %w", err)
	}
	if userID == post.AuthorID {
		return false, nil
	}
	switch event.Status {
	case domain.StatusPublic:
		return true, nil
	case domain.StatusPrivate:
		if _, err := s.inviteeRepo.GetByPostAndUser(ctx, event.ID, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("get invitee: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// MostLikelyGoing builds the bounded attendance preview: the requesting
// user's entry when they may attend, the post author marked as going, then
// stored invitees in (status, user_id) order up to limit.
func (s *eventService) MostLikelyGoing(ctx context.Context, event *domain.Event, userID int64, limit int) ([]*domain.Invitee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if limit < 0 {
		return nil, domain.ErrInvalidInput
	}
	entries := []*domain.Invitee{}

	can, err := s.CanUpdateAttendance(ctx, event, userID)
	if err != nil {
		return nil, err
	}
	if can {
		row, err := s.inviteeRepo.GetByPostAndUser(ctx, event.ID, userID)
		switch {
		case err == nil:
			entries = append(entries, row)
		case errors.Is(err, domain.ErrNotFound):
			// Not persisted: a placeholder for display only.
			entries = append(entries, &domain.Invitee{PostID: event.ID, UserID: userID, Status: domain.InviteeGoing})
		default:
			return nil, fmt.Errorf("get invitee: %w", err)
		}
	}

	post, err := s.posts.GetByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	// The author always shows as attending.
	entries = append(entries, &domain.Invitee{PostID: event.ID, UserID: post.AuthorID, Status: domain.InviteeGoing})

	if remaining := limit - len(entries); remaining > 0 {
		stored, err := s.inviteeRepo.ListByPostID(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("list invitees: %w", err)
		}
		for _, inv := range stored {
			if inv.UserID == userID {
				continue
			}
			entries = append(entries, inv)
			remaining--
			if remaining == 0 {
				break
			}
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// UpdateAttendance records the user's self-registered attendance status.
func (s *eventService) UpdateAttendance(ctx context.Context, event *domain.Event, userID int64, status domain.InviteeStatus) (*domain.Invitee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	can, err := s.CanUpdateAttendance(ctx, event, userID)
	if err != nil {
		return nil, err
	}
	if !can {
		return nil, domain.ErrForbidden
	}
	inv, err := s.inviteeRepo.UpsertAttendance(ctx, event.ID, userID, status)
	if err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return inv, nil
}
