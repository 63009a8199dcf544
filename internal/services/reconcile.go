package services

import (
	"context"
	"fmt"
	"time"

	"posteventcalendar/internal/domain"
)

// ReconcileInvitees makes the stored invitee rows match the resolved raw
// invitee specification, then notifies the newly added invitees. Running it
// again with unchanged input is a no-op: no duplicate rows, no re-sent
// notifications.
func (s *eventService) ReconcileInvitees(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// One explicit resolution per invocation, threaded through both halves.
	resolved, err := s.resolver.Resolve(ctx, event.RawInvitees)
	if err != nil {
		return fmt.Errorf("resolve invitees: %w", err)
	}

	if err := s.destroyExtraneous(ctx, event.ID, resolved); err != nil {
		return err
	}
	if err := s.fillMissing(ctx, event.ID, resolved); err != nil {
		return err
	}
	return s.dispatchNotifications(ctx, event)
}

func (s *eventService) destroyExtraneous(ctx context.Context, postID int64, resolved []int64) error {
	if err := s.inviteeRepo.DeleteWhereUserNotIn(ctx, postID, resolved); err != nil {
		return fmt.Errorf("delete extraneous invitees: %w", err)
	}
	return nil
}

func (s *eventService) fillMissing(ctx context.Context, postID int64, resolved []int64) error {
	stored, err := s.inviteeRepo.ListByPostID(ctx, postID)
	if err != nil {
		return fmt.Errorf("list invitees: %w", err)
	}
	present := make(map[int64]struct{}, len(stored))
	for _, inv := range stored {
		present[inv.UserID] = struct{}{}
	}

	now := time.Now().UTC()
	for _, userID := range resolved {
		if _, ok := present[userID]; ok {
			continue
		}
		inv := &domain.Invitee{
			PostID:    postID,
			UserID:    userID,
			Status:    domain.InviteeGoing,
			Notified:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.inviteeRepo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invitee: %w", err)
		}
	}
	return nil
}

// dispatchNotifications sends one notification per not-yet-notified invitee.
// Each row is claimed via a conditional update before the send, so a row is
// never notified twice even under concurrent dispatch.
func (s *eventService) dispatchNotifications(ctx context.Context, event *domain.Event) error {
	pending, err := s.inviteeRepo.ListUnnotified(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list unnotified invitees: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	post, err := s.posts.GetByID(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	authorName := ""
	if author, err := s.userRepo.GetByID(ctx, post.AuthorID); err == nil {
		authorName = author.DisplayName()
	}
	payload := &domain.NotificationPayload{
		TopicID:    post.TopicID,
		PostNumber: post.PostNumber,
		TopicTitle: post.TopicTitle,
		AuthorName: authorName,
		MessageKey: domain.EventInvitationMessageKey,
	}

	for _, inv := range pending {
		claimed, err := s.inviteeRepo.MarkNotified(ctx, event.ID, inv.UserID)
		if err != nil {
			return fmt.Errorf("mark invitee notified: %w", err)
		}
		if !claimed {
			// Another dispatcher won the claim; skip.
			continue
		}
		if err := s.notifier.Send(ctx, inv.UserID, payload); err != nil {
			s.logger.Warn("invite notification failed",
				"post_id", event.ID, "user_id", inv.UserID, "error", err)
		}
	}
	return nil
}
