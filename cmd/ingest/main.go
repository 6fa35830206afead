package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"ncaam/ingestion/internal/app"
	"ncaam/ingestion/internal/config"
	"ncaam/ingestion/internal/jobs"
	"ncaam/ingestion/internal/pipeline"
	"ncaam/ingestion/internal/repository"
	"ncaam/ingestion/internal/scheduler"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

func main() {
	cfg := config.MustLoad()
	app.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cliApp := &cli.App{
		Name:  "ingest",
		Usage: "ingest ESPN men's college basketball data into Postgres",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress progress lines"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent fetch workers (default FETCH_WORKERS)"},
		},
		Commands: []*cli.Command{
			dailyCommand(cfg),
			gamesCommand(cfg),
			backfillCommand(cfg),
			jobCommand(cfg, "odds", "fetch odds for upcoming games without any", nil,
				func(_ *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.OddsJob(), nil
				}),
			jobCommand(cfg, "predictions", "fetch projections for recent and upcoming games without any", nil,
				func(_ *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.PredictionsJob(), nil
				}),
			jobCommand(cfg, "seasons", "refresh seasons and season types", nil,
				func(_ *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.SeasonsJob(), nil
				}),
			jobCommand(cfg, "teams", "replace the current team list", nil,
				func(_ *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.TeamsJob(), nil
				}),
			jobCommand(cfg, "conferences", "walk the conference tree of a season", []cli.Flag{seasonFlag()},
				func(c *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.ConferencesJob(c.Int("season")), nil
				}),
			jobCommand(cfg, "team-seasons", "fetch the teams of every leaf conference", []cli.Flag{seasonFlag()},
				func(c *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.TeamSeasonsJob(c.Int("season")), nil
				}),
			jobCommand(cfg, "rosters", "fetch team rosters not stored yet", []cli.Flag{seasonFlag(), refreshFlag()},
				func(c *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.RostersJob(c.Int("season"), c.Bool("refresh")), nil
				}),
			jobCommand(cfg, "coaches", "fetch team coaches not stored yet", []cli.Flag{seasonFlag(), refreshFlag()},
				func(c *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.CoachesJob(c.Int("season"), c.Bool("refresh")), nil
				}),
			jobCommand(cfg, "rankings", "fetch every weekly poll", []cli.Flag{seasonFlag()},
				func(c *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
					return catalog.RankingsJob(c.Int("season")), nil
				}),
			referenceCommand(cfg),
			historyCommand(cfg),
			migrateCommand(cfg),
		},
	}

	err := cliApp.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func seasonFlag() cli.Flag {
	return &cli.IntFlag{Name: "season", Usage: "season (ending year); 0 means every stored season"}
}

func refreshFlag() cli.Flag {
	return &cli.BoolFlag{Name: "refresh", Usage: "refetch team seasons that are already stored"}
}

// withApp builds the service for one command and closes it afterwards.
func withApp(c *cli.Context, cfg *config.Config, fn func(*app.App) error) error {
	if workers := c.Int("workers"); workers > 0 {
		cfg.FetchWorkers = workers
	}
	a, err := app.New(c.Context, cfg, c.Bool("quiet"))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func jobCommand(cfg *config.Config, name, usage string, flags []cli.Flag, build func(*cli.Context, *jobs.Catalog) (pipeline.Job, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: flags,
		Action: func(c *cli.Context) error {
			return withApp(c, cfg, func(a *app.App) error {
				job, err := build(c, a.Catalog)
				if err != nil {
					return err
				}
				summary, err := a.Runner.Run(c.Context, job)
				if err != nil {
					return err
				}
				printSummary(c.App.Writer, summary)
				return nil
			})
		},
	}
}

func dailyCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "daily",
		Usage: "ingest recent games, then predictions, then odds",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Usage: "lookback in days (default DAILY_LOOKBACK_DAYS)"},
		},
		Action: func(c *cli.Context) error {
			days := cfg.DailyLookbackDays
			if c.IsSet("days") {
				days = c.Int("days")
			}
			if days < 0 {
				return fmt.Errorf("--days cannot be negative, got %d", days)
			}
			return withApp(c, cfg, func(a *app.App) error {
				summary, err := jobs.Daily(c.Context, a.Runner, a.Catalog, days)
				if summary != nil {
					for _, run := range summary.Runs {
						printSummary(c.App.Writer, run)
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "daily update: %d added, %d api calls, %d errors in %s\n",
					summary.Total.RecordsAdded, summary.Total.APICalls, summary.Total.Errors,
					summary.Duration.Round(time.Millisecond))
				return nil
			})
		},
	}
}

func gamesCommand(cfg *config.Config) *cli.Command {
	cmd := jobCommand(cfg, "games", "ingest completed games in an explicit date range",
		[]cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "first day (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "end", Usage: "last day (YYYY-MM-DD), defaults to --start"},
		},
		func(c *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
			start, end, err := parseRange(c)
			if err != nil {
				return pipeline.Job{}, err
			}
			return catalog.RangeGamesJob(start, end)
		})
	cmd.Before = func(c *cli.Context) error {
		start, end, err := parseRange(c)
		if err != nil {
			return err
		}
		_, err = jobs.RangeWindow(start, end)
		return err
	}
	return cmd
}

func parseRange(c *cli.Context) (time.Time, time.Time, error) {
	start, err := time.Parse(dayLayout, c.String("start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	end := start
	if c.IsSet("end") {
		if end, err = time.Parse(dayLayout, c.String("end")); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	return start, end, nil
}

func backfillCommand(cfg *config.Config) *cli.Command {
	cmd := jobCommand(cfg, "backfill", "ingest every completed game of a season",
		[]cli.Flag{
			&cli.IntFlag{Name: "season", Usage: "season (ending year), defaults to the current one"},
			&cli.StringFlag{Name: "start-month", Usage: "first month (YYYY-MM), defaults to November before the season"},
		},
		func(c *cli.Context, catalog *jobs.Catalog) (pipeline.Job, error) {
			startMonth, err := parseStartMonth(c)
			if err != nil {
				return pipeline.Job{}, err
			}
			return catalog.BackfillJob(c.Int("season"), startMonth)
		})
	cmd.Before = func(c *cli.Context) error {
		startMonth, err := parseStartMonth(c)
		if err != nil {
			return err
		}
		_, err = jobs.BackfillWindow(c.Int("season"), startMonth, time.Now().UTC())
		return err
	}
	return cmd
}

func parseStartMonth(c *cli.Context) (time.Time, error) {
	if !c.IsSet("start-month") {
		return time.Time{}, nil
	}
	month, err := time.Parse(monthLayout, c.String("start-month"))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start-month: %w", err)
	}
	return month, nil
}

func referenceCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "reference",
		Usage: "run the full reference refresh the worker schedules",
		Action: func(c *cli.Context) error {
			return withApp(c, cfg, func(a *app.App) error {
				return scheduler.New(cfg, a.Runner, a.Catalog).RefreshReference(c.Context)
			})
		},
	}
}

func historyCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show the most recent runs from update_log",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to show"},
		},
		Action: func(c *cli.Context) error {
			db, err := repository.Open(c.Context, cfg.DatabaseDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.RecentRuns(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tTABLE\tOPERATION\tADDED\tUPDATED\tAPI CALLS\tERRORS\tSECONDS")
			for _, r := range runs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.1f\n",
					r.ID, r.Timestamp.Format(time.RFC3339), r.TableName, r.Operation,
					r.RecordsAdded, r.RecordsUpdated, r.APICalls, r.ErrorCount, r.DurationSeconds)
			}
			return w.Flush()
		},
	}
}

func migrateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					return repository.Migrate(cfg.DatabaseDSN())
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					return repository.MigrateDown(cfg.DatabaseDSN(), c.Int("steps"))
				},
			},
		},
	}
}

// printSummary writes the human-readable summary of one run.
func printSummary(w io.Writer, s *pipeline.Summary) {
	fmt.Fprintf(w, "%s (%s): %d candidates, %d complete, %d incomplete, %d absent, %d errors\n",
		s.Job, s.Operation, s.Candidates, s.Complete, s.Incomplete, s.Absent, s.Errors)

	tables := make([]string, 0, len(s.Written))
	for table := range s.Written {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		written := s.Written[table]
		fmt.Fprintf(w, "  %-18s %6d added %6d updated\n", table, written.Inserted, written.Updated)
	}
	fmt.Fprintf(w, "  %d api calls in %s\n", s.APICalls, s.Duration.Round(time.Millisecond))
}
