package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kickzshop/checkout/internal/domain"
)

const getUserSQL = `SELECT id, name, email, mobile_number, created_at FROM users WHERE id = $1`

// GetUser returns the user with the given id.
func (q *Queries) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	row := q.db.QueryRow(ctx, getUserSQL, id)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.MobileNumber, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}
