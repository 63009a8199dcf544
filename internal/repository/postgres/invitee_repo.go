package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"posteventcalendar/internal/domain"
)

type inviteeRepository struct {
	DB *sql.DB
}

func NewInviteeRepository(db *sql.DB) domain.InviteeRepository {
	return &inviteeRepository{
		DB: db,
	}
}

// Create inserts the invitee row. Rows are unique on (post_id, user_id); a
// conflicting insert is reported as (false, nil), not an error.
func (r *inviteeRepository) Create(ctx context.Context, inv *domain.Invitee) (bool, error) {
	query := `
		INSERT INTO post_event_invitees (post_id, user_id, status, notified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (post_id, user_id) DO NOTHING
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.PostID, inv.UserID, int(inv.Status), inv.Notified, inv.CreatedAt, inv.UpdatedAt).
		Scan(&inv.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already present, skip.
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *inviteeRepository) GetByPostAndUser(ctx context.Context, postID, userID int64) (*domain.Invitee, error) {
	query := `
		SELECT id, post_id, user_id, status, notified, created_at, updated_at
		FROM post_event_invitees
		WHERE post_id = $1 AND user_id = $2
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, postID, userID))
}

func (r *inviteeRepository) ListByPostID(ctx context.Context, postID int64) ([]*domain.Invitee, error) {
	query := `
		SELECT id, post_id, user_id, status, notified, created_at, updated_at
		FROM post_event_invitees
		WHERE post_id = $1
		ORDER BY status, user_id
	`
	return r.list(ctx, query, postID)
}

func (r *inviteeRepository) ListUnnotified(ctx context.Context, postID int64) ([]*domain.Invitee, error) {
	query := `
		SELECT id, post_id, user_id, status, notified, created_at, updated_at
		FROM post_event_invitees
		WHERE post_id = $1 AND notified = FALSE
		ORDER BY user_id
	`
	return r.list(ctx, query, postID)
}

// DeleteWhereUserNotIn removes the event's invitees outside the given user
// set; an empty set removes them all.
func (r *inviteeRepository) DeleteWhereUserNotIn(ctx context.Context, postID int64, userIDs []int64) error {
	query := `
		DELETE FROM post_event_invitees
		WHERE post_id = $1 AND user_id <> ALL($2)
	`
	_, err := r.DB.ExecContext(ctx, query, postID, pq.Array(userIDs))
	return err
}

func (r *inviteeRepository) DeleteByPostID(ctx context.Context, postID int64) error {
	query := `
		DELETE FROM post_event_invitees
		WHERE post_id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, postID)
	return err
}

// MarkNotified claims the row for notification. The conditional update makes
// the claim atomic: only one caller sees a row flip from false to true.
func (r *inviteeRepository) MarkNotified(ctx context.Context, postID, userID int64) (bool, error) {
	query := `
		UPDATE post_event_invitees
		SET notified = TRUE, updated_at = $3
		WHERE post_id = $1 AND user_id = $2 AND notified = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query, postID, userID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *inviteeRepository) UpsertAttendance(ctx context.Context, postID, userID int64, status domain.InviteeStatus) (*domain.Invitee, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO post_event_invitees (post_id, user_id, status, notified, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $4)
		ON CONFLICT (post_id, user_id) DO UPDATE SET
			status = EXCLUDED.status,
			notified = TRUE,
			updated_at = EXCLUDED.updated_at
		RETURNING id, post_id, user_id, status, notified, created_at, updated_at
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, postID, userID, int(status), now))
}

func (r *inviteeRepository) scanOne(row *sql.Row) (*domain.Invitee, error) {
	inv := &domain.Invitee{}
	var status int
	err := row.Scan(&inv.ID, &inv.PostID, &inv.UserID, &status, &inv.Notified, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	inv.Status = domain.InviteeStatus(status)
	return inv, nil
}

func (r *inviteeRepository) list(ctx context.Context, query string, postID int64) ([]*domain.Invitee, error) {
	rows, err := r.DB.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitee
	for rows.Next() {
		inv := &domain.Invitee{}
		var status int
		if err := rows.Scan(&inv.ID, &inv.PostID, &inv.UserID, &status, &inv.Notified, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		inv.Status = domain.InviteeStatus(status)
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitee{}
	}
	return invs, nil
}
