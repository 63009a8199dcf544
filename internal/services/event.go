package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"posteventcalendar/internal/domain"
)

type eventService struct {
	logger         *slog.Logger
	eventRepo      domain.EventRepository
	inviteeRepo    domain.InviteeRepository
	userRepo       domain.UserRepository
	posts          domain.PostProvider
	parser         domain.EventTextParser
	resolver       domain.InviteeResolver
	notifier       domain.NotificationChannel
	publisher      domain.RealtimePublisher
	mirror         domain.TopicFieldMirror
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories and
// collaborator ports.
func NewEventService(logger *slog.Logger,
	eventRepo domain.EventRepository,
	inviteeRepo domain.InviteeRepository,
	userRepo domain.UserRepository,
	posts domain.PostProvider,
	parser domain.EventTextParser,
	resolver domain.InviteeResolver,
	notifier domain.NotificationChannel,
	publisher domain.RealtimePublisher,
	mirror domain.TopicFieldMirror,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		logger:         logger,
		eventRepo:      eventRepo,
		inviteeRepo:    inviteeRepo,
		userRepo:       userRepo,
		posts:          posts,
		parser:         parser,
		resolver:       resolver,
		notifier:       notifier,
		publisher:      publisher,
		mirror:         mirror,
		contextTimeout: timeout,
	}
}

func (s *eventService) GetByPostID(ctx context.Context, postID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByPostID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateFromPost(ctx context.Context, post *domain.Post) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	parsed, err := s.parser.Extract(ctx, post.Raw)
	if err != nil {
		return nil, fmt.Errorf("extract event: %w", err)
	}

	existing, err := s.eventRepo.GetByPostID(ctx, post.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get event: %w", err)
	}

	// A post that no longer carries an event marker deletes its event.
	if parsed == nil {
		if existing == nil {
			return nil, nil
		}
		if err := s.destroyEvent(ctx, post, existing); err != nil {
			return nil, err
		}
		return nil, nil
	}

	event := mergeFields(existing, parsed, post.ID)
	normalizeTimes(event)
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.applyStatusUpdate(ctx, event); err != nil {
		return nil, err
	}

	// Post-commit mirror step: only first-post events surface at topic level.
	if post.IsFirstPost() {
		value := event.StartsAt.Format(time.RFC3339)
		if err := s.mirror.Upsert(ctx, post.TopicID, domain.EventStartsAtFieldName, value); err != nil {
			return nil, fmt.Errorf("mirror starts_at: %w", err)
		}
	}

	if err := s.publisher.Publish(ctx, post.TopicID, event.ID); err != nil {
		s.logger.Warn("realtime publish failed", "post_id", post.ID, "error", err)
	}
	return event, nil
}

// mergeFields combines the parsed candidate with the stored event, falling
// back to the stored value field by field when the candidate omits one.
func mergeFields(existing *domain.Event, parsed *domain.ParsedEvent, postID int64) *domain.Event {
	event := &domain.Event{ID: postID, Status: domain.StatusStandalone}
	if existing != nil {
		clone := *existing
		event = &clone
	}
	if parsed.Name != nil {
		event.Name = *parsed.Name
	}
	if parsed.StartsAt != nil {
		event.StartsAt = *parsed.StartsAt
	}
	if parsed.EndsAt != nil {
		end := *parsed.EndsAt
		event.EndsAt = &end
	}
	if parsed.Status != nil {
		event.Status = *parsed.Status
	}
	if parsed.RawInvitees != nil {
		event.RawInvitees = parsed.RawInvitees
	}
	return event
}

// normalizeTimes converts the event's timestamps to their canonical UTC
// representation before they are validated or persisted.
func normalizeTimes(event *domain.Event) {
	event.StartsAt = event.StartsAt.UTC()
	if event.EndsAt != nil {
		end := event.EndsAt.UTC()
		event.EndsAt = &end
	}
}

// applyStatusUpdate persists the merged event and runs the side effects its
// status demands. Public keeps pre-existing invitee rows in place; only
// Standalone tears the roster down.
func (s *eventService) applyStatusUpdate(ctx context.Context, event *domain.Event) error {
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	switch event.Status {
	case domain.StatusPrivate:
		if err := s.eventRepo.Upsert(ctx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		if err := s.ReconcileInvitees(ctx, event); err != nil {
			return err
		}
	case domain.StatusPublic:
		event.RawInvitees = nil
		if err := s.eventRepo.Upsert(ctx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
	case domain.StatusStandalone:
		event.RawInvitees = nil
		if err := s.eventRepo.Upsert(ctx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		if err := s.inviteeRepo.DeleteByPostID(ctx, event.ID); err != nil {
			return fmt.Errorf("delete invitees: %w", err)
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

func (s *eventService) destroyEvent(ctx context.Context, post *domain.Post, event *domain.Event) error {
	if err := s.inviteeRepo.DeleteByPostID(ctx, event.ID); err != nil {
		return fmt.Errorf("delete invitees: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if post.IsFirstPost() {
		if err := s.mirror.Delete(ctx, post.TopicID, domain.EventStartsAtFieldName); err != nil {
			return fmt.Errorf("delete mirrored starts_at: %w", err)
		}
	}
	return nil
}
