package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// Users handles the account side of channel linking and the admin listing.
type Users struct {
	pool *pgxpool.Pool
}

// NewUsers constructs the users repository.
func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// FindByTelegramAuthToken resolves the one-time linking token handed out
// by the website to the owning user.
func (r *Users) FindByTelegramAuthToken(ctx context.Context, token string) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, COALESCE(email, '') FROM users WHERE telegram_auth_token = $1`,
		token,
	).Scan(&u.ID, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by auth token: %w", err)
	}
	return &u, nil
}

// LinkTelegramChannel registers (or re-enables) the user's telegram
// channel and burns the one-time token, atomically.
func (r *Users) LinkTelegramChannel(ctx context.Context, userID, chatID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin link transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO notification_channels (user_id, type, identifier, enabled)
		 VALUES ($1, 'telegram', $2, true)
		 ON CONFLICT (user_id, type) DO UPDATE
		   SET identifier = EXCLUDED.identifier, enabled = true`,
		userID, chatID,
	)
	if err != nil {
		return fmt.Errorf("upsert telegram channel: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET telegram_auth_token = NULL WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear auth token: %w", err)
	}

	return tx.Commit(ctx)
}

// List returns all users, newest first. Used by the admin dashboard.
func (r *Users) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(email, ''), COALESCE(name, ''), COALESCE(provider_name, ''),
		        created_at, last_signin_at
		 FROM users
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.ProviderName, &u.CreatedAt, &u.LastSigninAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
