package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/ItsHarfer/CineShelf/internal/config"
	"github.com/ItsHarfer/CineShelf/internal/omdb"
	"github.com/ItsHarfer/CineShelf/internal/repository/sqlite"
	"github.com/ItsHarfer/CineShelf/internal/service"
)

var errLookupDisabled = errors.New("OMDB_API_KEY is not set")

// runner holds what every subcommand needs. open fills it before the command
// runs and close releases it afterwards.
type runner struct {
	out    io.Writer
	logger *slog.Logger
	db     *sqlite.DB
	svc    *service.CollectionService
	lookup resolver // nil without an API key
}

func newRunner(out io.Writer) *runner {
	return &runner{out: out}
}

func (r *runner) open(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, err
	}
	if path := cmd.String("db"); path != "" {
		cfg.Database.Path = path
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	r.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return ctx, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return ctx, err
	}
	r.attach(db, r.logger)

	if client, err := omdb.New(cfg.OMDb.APIKey,
		omdb.WithBaseURL(cfg.OMDb.BaseURL),
		omdb.WithTimeout(cfg.OMDb.Timeout.Duration),
		omdb.WithLogger(r.logger),
	); err == nil {
		r.lookup = client
	}
	return ctx, nil
}

// attach wires the service over db. Tests call it with an in-memory store.
func (r *runner) attach(db *sqlite.DB, logger *slog.Logger) {
	r.db = db
	r.logger = logger
	r.svc = service.NewCollectionService(db, logger)
}

func (r *runner) close(context.Context, *cli.Command) error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *runner) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "seed",
			Usage: "Load the sample users Herbert and Lieselotte with their movies",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "reset", Usage: "Delete every existing user (and their movies) first"},
				&cli.BoolFlag{Name: "fetch-posters", Usage: "Look up poster URLs on OMDb"},
			},
			Action: r.seed,
		},
		{
			Name:   "users",
			Usage:  "List users",
			Action: r.users,
		},
		{
			Name:  "movies",
			Usage: "List a user's movies",
			Flags: []cli.Flag{
				&cli.Int64Flag{Name: "user", Aliases: []string{"u"}, Usage: "User id", Required: true},
			},
			Action: r.movies,
		},
		{
			Name:      "lookup",
			Usage:     "Resolve a title on OMDb without saving it",
			Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "json", Usage: "Print the normalized record as JSON"},
			},
			Action: r.lookupTitle,
		},
		{
			Name:      "add",
			Usage:     "Resolve a title on OMDb and add it to a user's collection",
			Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
			Flags: []cli.Flag{
				&cli.Int64Flag{Name: "user", Aliases: []string{"u"}, Usage: "User id", Required: true},
			},
			Action: r.add,
		},
	}
}

func (r *runner) seed(ctx context.Context, cmd *cli.Command) error {
	opts := seedOptions{reset: cmd.Bool("reset"), fetchPosters: cmd.Bool("fetch-posters")}
	if opts.fetchPosters && r.lookup == nil {
		r.logger.Warn("posters not fetched", slog.String("reason", errLookupDisabled.Error()))
	}

	report, err := seed(ctx, r.svc, r.lookup, opts, r.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "seeded %d users, %d movies added, %d already present, %d posters\n",
		report.users, report.added, report.skipped, report.posters)
	return nil
}

func (r *runner) users(ctx context.Context, _ *cli.Command) error {
	users, err := r.svc.ListUsers(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		movies, err := r.svc.ListMovies(ctx, u.ID)
		if err != nil {
			return err
		}
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Name, strconv.Itoa(len(movies))})
	}
	fmt.Fprintln(r.out, renderTable([]string{"ID", "Name", "Movies"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight}))
	return nil
}

func (r *runner) movies(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.Int64("user")
	if _, err := r.svc.GetUser(ctx, userID); err != nil {
		return err
	}
	movies, err := r.svc.ListMovies(ctx, userID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(movies))
	for _, m := range movies {
		poster := "-"
		if m.HasPoster() {
			poster = *m.PosterURL
		}
		rows = append(rows, []string{strconv.FormatInt(m.ID, 10), m.Name, m.Director, strconv.Itoa(m.Year), poster})
	}
	fmt.Fprintln(r.out, renderTable([]string{"ID", "Title", "Director", "Year", "Poster"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}

func (r *runner) lookupTitle(ctx context.Context, cmd *cli.Command) error {
	if r.lookup == nil {
		return errLookupDisabled
	}
	result, err := r.lookup.Resolve(ctx, cmd.StringArg("title"))
	if err != nil {
		return err
	}
	if !result.Found() {
		fmt.Fprintf(r.out, "not found: %s\n", result.Reason)
		return nil
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Record)
	}
	rec := result.Record
	fmt.Fprintln(r.out, renderTable([]string{"Field", "Value"}, [][]string{
		{"Title", rec.Title},
		{"Year", rec.Year},
		{"Director", rec.Director},
		{"Poster", rec.Poster},
		{"Plot", rec.Plot},
	}, nil))
	return nil
}

func (r *runner) add(ctx context.Context, cmd *cli.Command) error {
	if r.lookup == nil {
		return errLookupDisabled
	}
	userID := cmd.Int64("user")
	if _, err := r.svc.GetUser(ctx, userID); err != nil {
		return err
	}

	title := cmd.StringArg("title")
	result, err := r.lookup.Resolve(ctx, title)
	if err != nil {
		return err
	}
	if !result.Found() {
		return fmt.Errorf("no OMDb match for %q: %s", title, result.Reason)
	}

	movie, err := r.svc.AddMovie(ctx, result.Record.ToMovie(userID))
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "added %s (id %d)\n", movie, movie.ID)
	return nil
}
