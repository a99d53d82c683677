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

var _ repository.MovieRepository = (*DB)(nil)

const movieColumns = `id, name, director, year, poster_url, owner_id`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (model.Movie, error) {
	var (
		m      model.Movie
		poster sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Director, &m.Year, &poster, &m.OwnerID); err != nil {
		return model.Movie{}, err
	}
	if poster.Valid {
		p := poster.String
		m.PosterURL = &p
	}
	return m, nil
}

// nullablePoster maps a nil or empty poster to SQL NULL.
func nullablePoster(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

// ListMovies returns the movies owned by ownerID in insertion order.
// It does not check that the owner exists.
func (db *DB) ListMovies(ctx context.Context, ownerID int64) ([]model.Movie, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE owner_id = ? ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, apperror.Storage(fmt.Sprintf("listing movies of user %d", ownerID), err)
	}
	defer rows.Close()

	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, apperror.Storage("scanning movie row", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterating movies", err)
	}

	return movies, nil
}

// GetMovie retrieves a single movie by id, whoever owns it.
func (db *DB) GetMovie(ctx context.Context, id int64) (*model.Movie, error) {
	m, err := scanMovie(db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("movie", id)
		}
		return nil, apperror.Storage(fmt.Sprintf("getting movie %d", id), err)
	}
	return &m, nil
}

// FindMovieByName looks up ownerID's movie with exactly this title.
// The comparison is case-sensitive.
func (db *DB) FindMovieByName(ctx context.Context, ownerID int64, name string) (*model.Movie, error) {
	m, err := scanMovie(db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE owner_id = ? AND name = ? ORDER BY id LIMIT 1`,
		ownerID, name,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("movie", name)
		}
		return nil, apperror.Storage(fmt.Sprintf("finding movie %q", name), err)
	}
	return &m, nil
}

// AddMovie inserts movie unless its owner already has a movie with the same
// name.
//
// The duplicate check is part of the INSERT statement itself, so no other
// writer can slip a row in between check and insert. Zero affected rows means
// the title was taken.
func (db *DB) AddMovie(ctx context.Context, movie *model.Movie) error {
	return db.withTx(ctx, fmt.Sprintf("adding movie %q", movie.Name), func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO movies (name, director, year, poster_url, owner_id)
			 SELECT ?, ?, ?, ?, ?
			 WHERE NOT EXISTS (
				SELECT 1 FROM movies WHERE owner_id = ? AND name = ?
			 )`,
			movie.Name,
			movie.Director,
			movie.Year,
			nullablePoster(movie.PosterURL),
			movie.OwnerID,
			movie.OwnerID,
			movie.Name,
		)
		if err != nil {
			return fmt.Errorf("inserting movie: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.Conflict("movie", movie.Name)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading movie id: %w", err)
		}
		movie.ID = id
		return nil
	})
}

// UpsertMovie updates the movie with movie.ID if it exists and inserts it
// otherwise. An update rewrites name, director, year and poster; owner_id is
// left untouched and the stored owner is reported back in movie.OwnerID.
//
// A zero ID always inserts and receives a generated id. Either branch returns
// apperror.ErrConflict without writing when the owner already has another
// movie with the same name.
func (db *DB) UpsertMovie(ctx context.Context, movie *model.Movie) error {
	return db.withTx(ctx, fmt.Sprintf("saving movie %q", movie.Name), func(ctx context.Context, tx *sql.Tx) error {
		var storedOwner int64
		exists := false
		if movie.ID != 0 {
			err := tx.QueryRowContext(ctx,
				`SELECT owner_id FROM movies WHERE id = ?`, movie.ID,
			).Scan(&storedOwner)
			switch {
			case err == nil:
				exists = true
			case errors.Is(err, sql.ErrNoRows):
			default:
				return fmt.Errorf("checking movie %d: %w", movie.ID, err)
			}
		}

		if exists {
			res, err := tx.ExecContext(ctx,
				`UPDATE movies
				 SET name = ?, director = ?, year = ?, poster_url = ?
				 WHERE id = ? AND NOT EXISTS (
					SELECT 1 FROM movies WHERE owner_id = ? AND name = ? AND id <> ?
				 )`,
				movie.Name,
				movie.Director,
				movie.Year,
				nullablePoster(movie.PosterURL),
				movie.ID,
				storedOwner,
				movie.Name,
				movie.ID,
			)
			if err != nil {
				return fmt.Errorf("updating movie %d: %w", movie.ID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("checking rows affected: %w", err)
			}
			if affected == 0 {
				return apperror.Conflict("movie", movie.Name)
			}
			movie.OwnerID = storedOwner
			return nil
		}

		var id any
		if movie.ID != 0 {
			id = movie.ID
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO movies (id, name, director, year, poster_url, owner_id)
			 SELECT ?, ?, ?, ?, ?, ?
			 WHERE NOT EXISTS (
				SELECT 1 FROM movies WHERE owner_id = ? AND name = ?
			 )`,
			id,
			movie.Name,
			movie.Director,
			movie.Year,
			nullablePoster(movie.PosterURL),
			movie.OwnerID,
			movie.OwnerID,
			movie.Name,
		)
		if err != nil {
			return fmt.Errorf("inserting movie: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.Conflict("movie", movie.Name)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading movie id: %w", err)
		}
		movie.ID = newID
		return nil
	})
}

// DeleteMovie removes a movie by id. Ownership must be verified by the caller.
func (db *DB) DeleteMovie(ctx context.Context, id int64) error {
	return db.withTx(ctx, fmt.Sprintf("deleting movie %d", id), func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting movie row: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("movie", id)
		}
		return nil
	})
}
