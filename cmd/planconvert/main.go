// Command planconvert converts saved trip planning engine responses into the
// display model, and checks or publishes fare tables.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ottplanner/ottplanner/internal/database"
	"github.com/ottplanner/ottplanner/internal/fares"
	"github.com/ottplanner/ottplanner/internal/otp"
	"github.com/ottplanner/ottplanner/internal/planner"
	"github.com/ottplanner/ottplanner/internal/tripview"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "planconvert:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "planconvert",
		Usage:   "trip planner offline tools",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "log recovered fragments to stderr"},
		},
		Commands: []*cli.Command{
			convertCommand(),
			faresCommand(),
		},
	}
}

func logger(c *cli.Context) zerolog.Logger {
	if !c.Bool("verbose") {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: c.App.ErrWriter}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "convert a saved engine /plan response into the normalized plan",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "engine response JSON, - for stdin", Required: true},
			&cli.BoolFlag{Name: "pretty", Usage: "indent the output"},
			&cli.IntFlag{Name: "itin", Usage: "itinerary number to select", Value: 1},
			&cli.StringFlag{Name: "query", Usage: "the planner request query string, for the echo and link parameters"},
			&cli.StringFlag{Name: "timezone", Usage: "planner time zone", Value: "America/Los_Angeles"},
			&cli.TimestampFlag{Name: "now", Usage: "reference time for alert effectiveness", Layout: time.RFC3339},
		},
		Action: func(c *cli.Context) error {
			loc, err := time.LoadLocation(c.String("timezone"))
			if err != nil {
				return err
			}
			now := time.Now()
			if ts := c.Timestamp("now"); ts != nil {
				now = *ts
			}

			query, err := url.ParseQuery(c.String("query"))
			if err != nil {
				return fmt.Errorf("parse query: %w", err)
			}
			if c.IsSet("itin") || query.Get("itin_num") == "" {
				query.Set("itin_num", strconv.Itoa(c.Int("itin")))
			}

			in, err := openInput(c.String("file"))
			if err != nil {
				return err
			}
			defer in.Close()

			resp, err := otp.DecodeResponse(in)
			if err != nil {
				return fmt.Errorf("decode %s: %w", c.String("file"), err)
			}

			log := logger(c)
			svc := planner.NewService(planner.ServiceConfig{
				Builder:  tripview.NewBuilder(tripview.Config{Logger: log, Location: loc, Now: func() time.Time { return now }}),
				Logger:   log,
				Location: loc,
				Now:      func() time.Time { return now },
			})
			result := svc.Convert(resp, svc.ParseParams(query))

			return writeJSON(c.App.Writer, result, c.Bool("pretty"))
		},
	}
}

func faresCommand() *cli.Command {
	fileFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "YAML fare table", Required: true}
	}

	return &cli.Command{
		Name:  "fares",
		Usage: "check or publish a fare table",
		Subcommands: []*cli.Command{
			{
				Name:  "check",
				Usage: "validate a fare table and print the resolved fares",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					entries, err := fares.NewFileRepository(c.String("file")).ListEntries(c.Context)
					if err != nil {
						return err
					}

					resolved := make(map[string]string, len(entries))
					for _, e := range entries {
						resolved[e.Tier] = e.Value()
					}
					return writeJSON(c.App.Writer, resolved, true)
				},
			},
			{
				Name:  "load",
				Usage: "replace the fare_table in Postgres (DB_* or DATABASE_URL) with a fare file",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					entries, err := fares.NewFileRepository(c.String("file")).ListEntries(c.Context)
					if err != nil {
						return err
					}

					ctx, cancel := context.WithTimeout(c.Context, time.Minute)
					defer cancel()

					pool, err := database.Connect(ctx, database.ConfigFromEnv())
					if err != nil {
						return err
					}
					defer pool.Close()

					if err := fares.NewPostgresRepository(pool).ReplaceEntries(ctx, entries); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "loaded %d fare entries\n", len(entries))
					return nil
				},
			},
		},
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
