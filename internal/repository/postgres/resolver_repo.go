package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"posteventcalendar/internal/domain"
)

type inviteeResolverRepository struct {
	DB *sql.DB
}

// NewInviteeResolverRepository returns an InviteeResolver that matches raw
// specifiers against usernames and group names. The UNION deduplicates users
// reachable through several specifiers.
func NewInviteeResolverRepository(db *sql.DB) domain.InviteeResolver {
	return &inviteeResolverRepository{DB: db}
}

func (r *inviteeResolverRepository) Resolve(ctx context.Context, specifiers []string) ([]int64, error) {
	names := make([]string, 0, len(specifiers))
	for _, s := range specifiers {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return []int64{}, nil
	}

	query := `
		SELECT id FROM users WHERE lower(username) = ANY($1)
		UNION
		SELECT gu.user_id
		FROM group_users gu
		JOIN groups g ON g.id = gu.group_id
		WHERE lower(g.name) = ANY($1)
		ORDER BY 1
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
