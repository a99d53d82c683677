package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
	"github.com/ItsHarfer/CineShelf/internal/model"
	"github.com/ItsHarfer/CineShelf/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a user and copies the generated id into user.ID.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	return db.withTx(ctx, "creating user", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (name) VALUES (?)`,
			user.Name,
		)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", user.Name, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading user id: %w", err)
		}
		user.ID = id
		return nil
	})
}

// GetUser retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Storage(fmt.Sprintf("getting user %d", id), err)
	}

	return &u, nil
}

// ListUsers returns every user sorted by name, then id for equal names.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM users ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, apperror.Storage("listing users", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, apperror.Storage("scanning user row", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterating users", err)
	}

	return users, nil
}

// DeleteUser removes a user together with the movies it owns.
//
// The movies are deleted explicitly in the same transaction before the user
// row, so the result does not depend on the cascade alone. The foreign key's
// ON DELETE CASCADE still guards any other delete path.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	return db.withTx(ctx, fmt.Sprintf("deleting user %d", id), func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM movies WHERE owner_id = ?`, id,
		); err != nil {
			return fmt.Errorf("deleting movies of user %d: %w", id, err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting user row %d: %w", id, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("user", id)
		}
		return nil
	})
}
