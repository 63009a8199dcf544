package postgres

import (
	"context"
	"database/sql"
	"errors"

	"posteventcalendar/internal/domain"
)

type postRepository struct {
	DB *sql.DB
}

// NewPostRepository returns a PostProvider reading posts joined with their
// topic for the title.
func NewPostRepository(db *sql.DB) domain.PostProvider {
	return &postRepository{DB: db}
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query := `
		SELECT p.id, p.topic_id, p.post_number, p.user_id, p.raw, t.title
		FROM posts p
		JOIN topics t ON t.id = p.topic_id
		WHERE p.id = $1
	`
	post := &domain.Post{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&post.ID, &post.TopicID, &post.PostNumber, &post.AuthorID, &post.Raw, &post.TopicTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}
