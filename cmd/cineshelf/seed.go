package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
	"github.com/ItsHarfer/CineShelf/internal/model"
	"github.com/ItsHarfer/CineShelf/internal/omdb"
	"github.com/ItsHarfer/CineShelf/internal/service"
)

type seedMovie struct {
	title    string
	director string
	year     int
}

type seedUser struct {
	name   string
	movies []seedMovie
}

var sampleCollections = []seedUser{
	{
		name: "Herbert",
		movies: []seedMovie{
			{"Inception", "Christopher Nolan", 2010},
			{"The Matrix", "The Wachowskis", 1999},
			{"Interstellar", "Christopher Nolan", 2014},
			{"Arrival", "Denis Villeneuve", 2016},
			{"Her", "Spike Jonze", 2013},
			{"Ex Machina", "Alex Garland", 2014},
		},
	},
	{
		name: "Lieselotte",
		movies: []seedMovie{
			{"Pulp Fiction", "Quentin Tarantino", 1994},
			{"The Godfather", "Francis Ford Coppola", 1972},
			{"The Dark Knight", "Christopher Nolan", 2008},
			{"Fight Club", "David Fincher", 1999},
			{"Forrest Gump", "Robert Zemeckis", 1994},
			{"The Shawshank Redemption", "Frank Darabont", 1994},
		},
	},
}

// resolver is the lookup used for poster fetching. *omdb.Client satisfies it.
type resolver interface {
	Resolve(ctx context.Context, title string) (omdb.Result, error)
}

type seedOptions struct {
	reset        bool
	fetchPosters bool
}

type seedReport struct {
	users   int
	added   int
	skipped int
	posters int
}

// seed loads the sample collections. Existing users with a sample name are
// reused and movies they already have are skipped, so seeding twice without
// reset changes nothing. A failed poster lookup stores the movie without one.
func seed(ctx context.Context, svc *service.CollectionService, lookup resolver, opts seedOptions, logger *slog.Logger) (seedReport, error) {
	var report seedReport

	existing, err := svc.ListUsers(ctx)
	if err != nil {
		return report, err
	}

	if opts.reset {
		for _, u := range existing {
			if err := svc.DeleteUser(ctx, u.ID); err != nil {
				return report, fmt.Errorf("resetting user %d: %w", u.ID, err)
			}
		}
		existing = nil
	}

	byName := make(map[string]model.User, len(existing))
	for _, u := range existing {
		if _, ok := byName[u.Name]; !ok {
			byName[u.Name] = u
		}
	}

	for _, sample := range sampleCollections {
		user, ok := byName[sample.name]
		if !ok {
			created, err := svc.CreateUser(ctx, sample.name)
			if err != nil {
				return report, err
			}
			user = *created
			report.users++
		}

		for _, m := range sample.movies {
			movie := &model.Movie{
				Name:     m.title,
				Director: m.director,
				Year:     m.year,
				OwnerID:  user.ID,
			}
			if opts.fetchPosters && lookup != nil {
				movie.PosterURL = fetchPoster(ctx, lookup, m.title, logger)
			}

			_, err := svc.AddMovie(ctx, movie)
			switch {
			case err == nil:
				report.added++
				if movie.HasPoster() {
					report.posters++
				}
			case errors.Is(err, apperror.ErrConflict):
				report.skipped++
			default:
				return report, err
			}
		}
	}

	return report, nil
}

func fetchPoster(ctx context.Context, lookup resolver, title string, logger *slog.Logger) *string {
	result, err := lookup.Resolve(ctx, title)
	if err != nil {
		logger.Warn("poster lookup failed", slog.String("title", title), slog.String("error", err.Error()))
		return nil
	}
	if !result.Found() {
		logger.Warn("no OMDb match for sample movie", slog.String("title", title), slog.String("reason", result.Reason))
		return nil
	}
	return omdb.PosterURL(result.Record.Poster)
}
