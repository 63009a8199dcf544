package postgres

import (
	"context"
	"database/sql"
	"time"

	"posteventcalendar/internal/domain"
)

type topicFieldRepository struct {
	DB *sql.DB
}

// NewTopicFieldRepository returns a TopicFieldMirror backed by the
// topic_custom_fields table, keyed by (topic_id, name).
func NewTopicFieldRepository(db *sql.DB) domain.TopicFieldMirror {
	return &topicFieldRepository{
		DB: db,
	}
}

func (r *topicFieldRepository) Upsert(ctx context.Context, topicID int64, name, value string) error {
	query := `
		INSERT INTO topic_custom_fields (topic_id, name, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (topic_id, name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, topicID, name, value, time.Now().UTC())
	return err
}

func (r *topicFieldRepository) Delete(ctx context.Context, topicID int64, name string) error {
	query := `
		DELETE FROM topic_custom_fields
		WHERE topic_id = $1 AND name = $2
	`
	_, err := r.DB.ExecContext(ctx, query, topicID, name)
	return err
}
