package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
	"github.com/ItsHarfer/CineShelf/internal/omdb"
	"github.com/ItsHarfer/CineShelf/internal/repository/sqlite"
)

type fakeLookup struct {
	posters map[string]string
	err     error
	calls   int
}

func (f *fakeLookup) Resolve(_ context.Context, title string) (omdb.Result, error) {
	f.calls++
	if f.err != nil {
		return omdb.Result{}, f.err
	}
	poster, ok := f.posters[title]
	if !ok {
		return omdb.Result{Outcome: omdb.NotFound, Reason: "Movie not found!"}, nil
	}
	return omdb.Result{Outcome: omdb.Found, Record: omdb.Record{Title: title, Year: "2010", Director: "Someone", Poster: poster}}, nil
}

func newTestRunner(t *testing.T) (*runner, *bytes.Buffer) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var out bytes.Buffer
	r := newRunner(&out)
	r.attach(db, slog.New(slog.DiscardHandler))
	return r, &out
}

// run executes the subcommand tree without the Before/After hooks, which
// would load configuration and open a real database.
func run(t *testing.T, r *runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "cineshelf", Commands: r.commands()}
	return app.Run(context.Background(), append([]string{"cineshelf"}, args...))
}

func TestSeed_Idempotent(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	report, err := seed(ctx, r.svc, nil, seedOptions{}, r.logger)
	require.NoError(t, err)
	assert.Equal(t, 2, report.users)
	assert.Equal(t, 12, report.added)

	report, err = seed(ctx, r.svc, nil, seedOptions{}, r.logger)
	require.NoError(t, err)
	assert.Zero(t, report.users)
	assert.Zero(t, report.added)
	assert.Equal(t, 12, report.skipped)

	users, err := r.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Herbert", users[0].Name)
	assert.Equal(t, "Lieselotte", users[1].Name)
}

func TestSeed_ResetRemovesOtherUsers(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	_, err := r.svc.CreateUser(ctx, "Zora")
	require.NoError(t, err)

	_, err = seed(ctx, r.svc, nil, seedOptions{reset: true}, r.logger)
	require.NoError(t, err)

	users, err := r.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, "Zora", u.Name)
	}
}

func TestSeed_FetchPosters(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	lookup := &fakeLookup{posters: map[string]string{
		"Inception": "https://example.com/inception.jpg",
		"Her":       "N/A",
	}}

	report, err := seed(ctx, r.svc, lookup, seedOptions{fetchPosters: true}, r.logger)
	require.NoError(t, err)
	assert.Equal(t, 12, lookup.calls)
	assert.Equal(t, 1, report.posters)

	users, _ := r.svc.ListUsers(ctx)
	movies, err := r.svc.ListMovies(ctx, users[0].ID)
	require.NoError(t, err)
	for _, m := range movies {
		if m.Name == "Inception" {
			require.NotNil(t, m.PosterURL)
			assert.Equal(t, "https://example.com/inception.jpg", *m.PosterURL)
		} else {
			assert.Nil(t, m.PosterURL, m.Name)
		}
	}
}

func TestSeed_PostersCountedOnlyForAddedMovies(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	lookup := &fakeLookup{posters: map[string]string{"Inception": "https://example.com/inception.jpg"}}

	_, err := seed(ctx, r.svc, lookup, seedOptions{fetchPosters: true}, r.logger)
	require.NoError(t, err)

	report, err := seed(ctx, r.svc, lookup, seedOptions{fetchPosters: true}, r.logger)
	require.NoError(t, err)
	assert.Equal(t, 12, report.skipped)
	assert.Zero(t, report.posters)
}

func TestSeed_LookupFailureStillSeeds(t *testing.T) {
	r, _ := newTestRunner(t)
	lookup := &fakeLookup{err: apperror.Transport("omdb request", errors.New("offline"))}

	report, err := seed(context.Background(), r.svc, lookup, seedOptions{fetchPosters: true}, r.logger)
	require.NoError(t, err)
	assert.Equal(t, 12, report.added)
	assert.Zero(t, report.posters)
}

func TestCommands_UsersAndMovies(t *testing.T) {
	r, out := newTestRunner(t)
	require.NoError(t, run(t, r, "seed"))
	assert.Contains(t, out.String(), "seeded 2 users, 12 movies added")

	out.Reset()
	require.NoError(t, run(t, r, "users"))
	assert.Contains(t, out.String(), "Herbert")
	assert.Contains(t, out.String(), "Lieselotte")

	users, _ := r.svc.ListUsers(context.Background())
	out.Reset()
	require.NoError(t, run(t, r, "movies", "--user", strconv.FormatInt(users[0].ID, 10)))
	assert.Contains(t, out.String(), "Inception")
	assert.Contains(t, out.String(), "Christopher Nolan")

	err := run(t, r, "movies", "--user", "999")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCommands_LookupAndAdd(t *testing.T) {
	r, out := newTestRunner(t)
	r.lookup = &fakeLookup{posters: map[string]string{"Tenet": "N/A"}}

	user, err := r.svc.CreateUser(context.Background(), "Herbert")
	require.NoError(t, err)

	require.NoError(t, run(t, r, "lookup", "Tenet"))
	assert.Contains(t, out.String(), "Tenet")

	out.Reset()
	require.NoError(t, run(t, r, "lookup", "Nope"))
	assert.Contains(t, out.String(), "not found")

	out.Reset()
	require.NoError(t, run(t, r, "add", "--user", strconv.FormatInt(user.ID, 10), "Tenet"))
	assert.Contains(t, out.String(), "added Tenet (2010)")

	err = run(t, r, "add", "--user", strconv.FormatInt(user.ID, 10), "Tenet")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCommands_LookupDisabled(t *testing.T) {
	r, _ := newTestRunner(t)

	err := run(t, r, "lookup", "Tenet")
	assert.ErrorIs(t, err, errLookupDisabled)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "Name"}, [][]string{{"1", "Herbert"}, {"2"}}, []columnAlignment{alignRight})
	assert.Contains(t, out, "Herbert")
	assert.Contains(t, out, "NAME")
	assert.Empty(t, renderTable(nil, nil, nil))
}
