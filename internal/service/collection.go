// Package service contains the business rules of CineShelf.
//
// LAYERS:
//
//	Handler / CLI  → parses input, renders output
//	Service        → validates, enforces ownership, logs
//	Repository     → transactions and SQL
//
// CollectionService depends on repository.Store (an interface), never on
// *sqlite.DB, so tests inject an in-memory fake and main.go injects SQLite.
//
// Errors returned here always carry an apperror class. Callers branch with
// errors.Is(err, apperror.ErrConflict) and friends; they never parse messages.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
	"github.com/ItsHarfer/CineShelf/internal/model"
	"github.com/ItsHarfer/CineShelf/internal/repository"
)

const (
	MaxUserNameLength  = 100
	MaxMovieNameLength = 300
)

// CollectionService manages users and the movies they own.
type CollectionService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCollectionService(store repository.Store, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		store:  store,
		logger: logger,
	}
}

// =========================================================================
// USERS
// =========================================================================

// CreateUser validates name and persists a new user.
// Surrounding whitespace is removed before the name is stored.
func (s *CollectionService) CreateUser(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "user name is required")
	}
	if len(name) > MaxUserNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("user name must be %d characters or less", MaxUserNameLength))
	}

	user := &model.User{Name: name}
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("name", user.Name),
	)
	return user, nil
}

// GetUser returns apperror.ErrNotFound when id does not exist.
func (s *CollectionService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

// ListUsers returns every user ordered by name.
func (s *CollectionService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user and, in the same transaction, every movie it
// owns. A missing user is logged and reported as apperror.ErrNotFound.
func (s *CollectionService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return s.deleteFailed("user", id, err)
	}

	s.logger.Info("user deleted", slog.Int64("id", id))
	return nil
}

// =========================================================================
// MOVIES
// =========================================================================

// ListMovies returns the movies owned by ownerID. The owner's existence is not
// checked; an unknown owner simply has no movies.
func (s *CollectionService) ListMovies(ctx context.Context, ownerID int64) ([]model.Movie, error) {
	movies, err := s.store.ListMovies(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list movies",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing movies: %w", err)
	}
	return movies, nil
}

// GetMovie returns movieID only if ownerID owns it. A movie that exists but
// belongs to another user is reported as not found, so its existence is not
// leaked across collections.
func (s *CollectionService) GetMovie(ctx context.Context, ownerID, movieID int64) (*model.Movie, error) {
	movie, err := s.store.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie.OwnerID != ownerID {
		return nil, apperror.NotFound("movie", movieID)
	}
	return movie, nil
}

// HasMovie reports whether ownerID already has a movie titled exactly title.
func (s *CollectionService) HasMovie(ctx context.Context, ownerID int64, title string) (bool, error) {
	_, err := s.store.FindMovieByName(ctx, ownerID, title)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperror.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("checking for movie %q: %w", title, err)
	}
}

// AddMovie stores a new movie in its owner's collection.
//
// movie must have OwnerID set and no ID. The name is trimmed and required; an
// empty director becomes model.UnknownDirector. When the owner already has a
// movie with the same exact name nothing is written and apperror.ErrConflict
// is returned.
func (s *CollectionService) AddMovie(ctx context.Context, movie *model.Movie) (*model.Movie, error) {
	if movie.OwnerID <= 0 {
		return nil, apperror.ValidationFailed("ownerId", "movie owner is required")
	}
	if movie.ID != 0 {
		return nil, apperror.ValidationFailed("id", "a new movie must not have an id")
	}
	if err := normalizeMovie(movie); err != nil {
		return nil, err
	}

	if err := s.store.AddMovie(ctx, movie); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("movie already in collection",
				slog.Int64("owner_id", movie.OwnerID),
				slog.String("name", movie.Name),
			)
			return nil, err
		}
		s.logger.Error("failed to add movie",
			slog.Int64("owner_id", movie.OwnerID),
			slog.String("name", movie.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding movie: %w", err)
	}

	s.logger.Info("movie added",
		slog.Int64("id", movie.ID),
		slog.Int64("owner_id", movie.OwnerID),
		slog.String("name", movie.Name),
	)
	return movie, nil
}

// UpdateMovie saves movie with upsert semantics: the stored row with movie.ID
// has its name, director, year and poster replaced, or the movie is inserted
// when that id does not exist. The owner of an existing row never changes.
// Saving a name the owner already uses on another movie returns
// apperror.ErrConflict and writes nothing.
func (s *CollectionService) UpdateMovie(ctx context.Context, movie *model.Movie) (*model.Movie, error) {
	if err := normalizeMovie(movie); err != nil {
		return nil, err
	}

	if err := s.store.UpsertMovie(ctx, movie); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("movie name already in collection",
				slog.Int64("id", movie.ID),
				slog.String("name", movie.Name),
			)
			return nil, err
		}
		s.logger.Error("failed to update movie",
			slog.Int64("id", movie.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating movie: %w", err)
	}

	s.logger.Info("movie updated",
		slog.Int64("id", movie.ID),
		slog.String("name", movie.Name),
	)
	return movie, nil
}

// MovieEdit is a partial update. Nil fields are left as they are.
// Year is raw user input: its first four characters are parsed, and a value
// that does not parse leaves the stored year unchanged rather than failing.
type MovieEdit struct {
	Name     *string
	Director *string
	Year     string
}

// UpdateMovieFields applies edit to ownerID's movie movieID.
func (s *CollectionService) UpdateMovieFields(ctx context.Context, ownerID, movieID int64, edit MovieEdit) (*model.Movie, error) {
	movie, err := s.GetMovie(ctx, ownerID, movieID)
	if err != nil {
		return nil, err
	}

	if edit.Name != nil {
		movie.Name = *edit.Name
	}
	if edit.Director != nil {
		movie.Director = *edit.Director
	}
	if year, ok := model.ParseYear(edit.Year); ok {
		movie.Year = year
	} else if edit.Year != "" {
		s.logger.Debug("ignoring unparseable year",
			slog.Int64("id", movieID),
			slog.String("year", edit.Year),
		)
	}

	return s.UpdateMovie(ctx, movie)
}

// DeleteMovie removes the movie with id. It does not check ownership; callers
// resolve the id through GetMovie(ownerID, id) first.
func (s *CollectionService) DeleteMovie(ctx context.Context, id int64) error {
	if err := s.store.DeleteMovie(ctx, id); err != nil {
		return s.deleteFailed("movie", id, err)
	}

	s.logger.Info("movie deleted", slog.Int64("id", id))
	return nil
}

// RemoveMovie deletes movieID after verifying that ownerID owns it.
func (s *CollectionService) RemoveMovie(ctx context.Context, ownerID, movieID int64) (*model.Movie, error) {
	movie, err := s.GetMovie(ctx, ownerID, movieID)
	if err != nil {
		return nil, err
	}
	if err := s.DeleteMovie(ctx, movie.ID); err != nil {
		return nil, err
	}
	return movie, nil
}

func (s *CollectionService) deleteFailed(resource string, id int64, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		s.logger.Warn(resource+" to delete does not exist", slog.Int64("id", id))
		return err
	}
	s.logger.Error("failed to delete "+resource,
		slog.Int64("id", id),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("deleting %s: %w", resource, err)
}

// normalizeMovie trims text fields and applies defaults in place.
func normalizeMovie(movie *model.Movie) error {
	movie.Name = strings.TrimSpace(movie.Name)
	if movie.Name == "" {
		return apperror.ValidationFailed("name", "movie name is required")
	}
	if len(movie.Name) > MaxMovieNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("movie name must be %d characters or less", MaxMovieNameLength))
	}

	movie.Director = strings.TrimSpace(movie.Director)
	if movie.Director == "" {
		movie.Director = model.UnknownDirector
	}

	if movie.PosterURL != nil && strings.TrimSpace(*movie.PosterURL) == "" {
		movie.PosterURL = nil
	}
	return nil
}
