// Command cineshelf is the operator CLI: it seeds sample data, prints
// collections and tries OMDb lookups against the configured database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	runner := newRunner(os.Stdout)

	app := &cli.Command{
		Name:  "cineshelf",
		Usage: "Manage CineShelf movie collections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (overrides DB_PATH)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides LOG_LEVEL)",
			},
		},
		Before:   runner.open,
		After:    runner.close,
		Commands: runner.commands(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cineshelf:", err)
		os.Exit(1)
	}
}
