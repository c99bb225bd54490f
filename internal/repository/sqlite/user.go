package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/model"
	"github.com/sakif/memeforge/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts the user or refreshes the profile fields on conflict.
// The id is the auth provider's stable subject, so a returning user hits
// the conflict path and gets their name, email and photo updated to
// whatever the provider says now.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			photo_url = excluded.photo_url,
			updated_at = excluded.updated_at`,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PhotoURL,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.ID, err)
	}

	// Preserve the original created_at for returning users.
	return db.conn.QueryRowContext(ctx,
		`SELECT created_at FROM users WHERE id = ?`, user.ID,
	).Scan(&user.CreatedAt)
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, display_name, photo_url, created_at, updated_at
		 FROM users
		 WHERE id = ?`,
		id,
	).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &user, nil
}
