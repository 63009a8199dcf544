package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"posteventcalendar/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// Upsert writes the event keyed by its post id. Re-creating an event for a
// previously soft-deleted post revives the row.
func (r *eventRepository) Upsert(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO post_events (id, name, starts_at, ends_at, status, raw_invitees, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			status = EXCLUDED.status,
			raw_invitees = EXCLUDED.raw_invitees,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`
	_, err := r.DB.ExecContext(ctx, query,
		event.ID, event.Name, event.StartsAt, event.EndsAt, int(event.Status),
		pq.Array(event.RawInvitees), event.CreatedAt, event.UpdatedAt)
	return err
}

func (r *eventRepository) GetByPostID(ctx context.Context, postID int64) (*domain.Event, error) {
	query := `
		SELECT id, name, starts_at, ends_at, status, raw_invitees, deleted_at, created_at, updated_at
		FROM post_events
		WHERE id = $1 AND deleted_at IS NULL
	`
	event := &domain.Event{}
	var status int
	var raw pq.StringArray
	err := r.DB.QueryRowContext(ctx, query, postID).
		Scan(&event.ID, &event.Name, &event.StartsAt, &event.EndsAt, &status, &raw,
			&event.DeletedAt, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	event.Status = domain.EventStatus(status)
	event.RawInvitees = []string(raw)
	return event, nil
}

func (r *eventRepository) Delete(ctx context.Context, postID int64) error {
	query := `
		UPDATE post_events
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := r.DB.ExecContext(ctx, query, postID, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
