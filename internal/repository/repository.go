// Package repository declares the storage contracts the service layer depends on.
//
// Every write method is atomic: it either commits fully or returns an
// apperror.ErrStorage (or a domain error such as ErrConflict) with nothing
// persisted. Read methods return empty results rather than ErrNotFound, except
// the point lookups documented below.
package repository

import (
	"context"

	"github.com/ItsHarfer/CineShelf/internal/model"
)

type UserRepository interface {
	// CreateUser inserts user and sets its ID.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUser returns apperror.ErrNotFound when no user has id.
	GetUser(ctx context.Context, id int64) (*model.User, error)
	// ListUsers returns all users ordered by name ascending.
	ListUsers(ctx context.Context) ([]model.User, error)
	// DeleteUser removes the user and all owned movies in one transaction.
	// It returns apperror.ErrNotFound when no user has id.
	DeleteUser(ctx context.Context, id int64) error
}

type MovieRepository interface {
	// ListMovies returns the movies owned by ownerID. An unknown owner yields
	// an empty slice.
	ListMovies(ctx context.Context, ownerID int64) ([]model.Movie, error)
	// GetMovie returns apperror.ErrNotFound when no movie has id.
	GetMovie(ctx context.Context, id int64) (*model.Movie, error)
	// FindMovieByName returns apperror.ErrNotFound when ownerID has no movie
	// titled exactly name.
	FindMovieByName(ctx context.Context, ownerID int64, name string) (*model.Movie, error)
	// AddMovie inserts movie unless ownerID already has one with the same
	// exact name, in which case it returns apperror.ErrConflict.
	AddMovie(ctx context.Context, movie *model.Movie) error
	// UpsertMovie replaces the mutable fields of the movie with movie.ID, or
	// inserts it when that id does not exist. Either way it returns
	// apperror.ErrConflict when the owner has another movie with that name.
	UpsertMovie(ctx context.Context, movie *model.Movie) error
	// DeleteMovie returns apperror.ErrNotFound when no movie has id.
	DeleteMovie(ctx context.Context, id int64) error
}

// Store is the full persistence surface used by service.CollectionService.
type Store interface {
	UserRepository
	MovieRepository
}
