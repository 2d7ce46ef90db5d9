package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in`

// UpsertUser inserts a user or refreshes an existing one, keyed by open-id.
//
// On update only the non-nil fields of u are written, plus last_signed_in.
// A lookup followed by INSERT or UPDATE keeps the statement portable across
// SQLite and MySQL; a lost insert race falls back to the update path.
func (db *DB) UpsertUser(ctx context.Context, u model.UserUpsert) error {
	if u.OpenID == "" {
		return apperror.ValidationFailed("openId", "user openId is required for upsert")
	}
	if u.LastSignedIn.IsZero() {
		u.LastSignedIn = db.now()
	}

	var existingID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE open_id = ?`, u.OpenID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqldb: looking up user by open_id %s: %w", u.OpenID, err)
	}

	if existingID != 0 {
		return db.updateUser(ctx, existingID, u)
	}

	role := model.RoleUser
	if u.Role != nil {
		role = *u.Role
	}
	createdAt, updatedAt := db.stamps()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (open_id, name, email, login_method, role, created_at, updated_at, last_signed_in)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.OpenID, u.Name, u.Email, u.LoginMethod, role, createdAt, updatedAt, u.LastSignedIn,
	)
	if err != nil {
		// another request may have inserted the same open_id first
		if lookupErr := db.conn.QueryRowContext(ctx,
			`SELECT id FROM users WHERE open_id = ?`, u.OpenID,
		).Scan(&existingID); lookupErr == nil {
			return db.updateUser(ctx, existingID, u)
		}
		return fmt.Errorf("sqldb: inserting user (openId=%s): %w", u.OpenID, err)
	}
	return nil
}

func (db *DB) updateUser(ctx context.Context, id int64, u model.UserUpsert) error {
	s := &setList{}
	set(s, "name", u.Name)
	set(s, "email", u.Email)
	set(s, "login_method", u.LoginMethod)
	set(s, "role", u.Role)
	set(s, "last_signed_in", &u.LastSignedIn)
	return db.updateByID(ctx, "users", "user", id, s)
}

// GetUserByOpenID returns the user with the given open-id.
func (db *DB) GetUserByOpenID(ctx context.Context, openID string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE open_id = ?`, openID,
	).Scan(
		&u.ID, &u.OpenID, &u.Name, &u.Email, &u.LoginMethod, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("user not found with openId %s", openID),
			}
		}
		return nil, fmt.Errorf("sqldb: getting user %s: %w", openID, err)
	}
	return &u, nil
}

// SetUserRole changes a user's role.
func (db *DB) SetUserRole(ctx context.Context, openID string, role model.Role) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE open_id = ?`,
		role, db.now(), openID,
	)
	if err != nil {
		return fmt.Errorf("sqldb: setting role for %s: %w", openID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqldb: checking rows affected: %w", err)
	}
	if n == 0 {
		return &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: fmt.Sprintf("user not found with openId %s", openID),
		}
	}
	return nil
}
