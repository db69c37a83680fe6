package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/trainreroute/trainreroute/internal/reroute"
	"github.com/trainreroute/trainreroute/internal/train"
)

func newApp(out io.Writer, logger zerolog.Logger) *cli.App {
	seedFlag := &cli.PathFlag{
		Name:     "seed",
		Usage:    "YAML file of train rows",
		Required: true,
		EnvVars:  []string{"TRAINS_SEED_FILE"},
	}

	return &cli.App{
		Name:      "reroutectl",
		Usage:     "Inspect reroute suggestions for a train",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "log at debug level"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger = logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "compute",
				Usage: "print the reroute result for one train as JSON",
				Flags: []cli.Flag{
					seedFlag,
					&cli.StringFlag{Name: "train", Usage: "train row ID", Required: true},
					&cli.StringFlag{Name: "now", Usage: "reference time (RFC 3339), defaults to the current time"},
					&cli.StringFlag{Name: "timezone", Usage: "IANA zone for bare HH:MM schedules", EnvVars: []string{"APP_TIMEZONE"}},
				},
				Action: func(c *cli.Context) error {
					return runCompute(c, out, logger)
				},
			},
			{
				Name:  "validate",
				Usage: "check a seed file",
				Flags: []cli.Flag{seedFlag},
				Action: func(c *cli.Context) error {
					trains, err := train.LoadSeedFile(c.Path("seed"))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s: %d trains OK\n", c.Path("seed"), len(trains))
					return nil
				},
			},
		},
	}
}

func runCompute(c *cli.Context, out io.Writer, logger zerolog.Logger) error {
	trains, err := train.LoadSeedFile(c.Path("seed"))
	if err != nil {
		return err
	}

	now := time.Now()
	if v := c.String("now"); v != "" {
		if now, err = time.Parse(time.RFC3339, v); err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	var location *time.Location
	if tz := c.String("timezone"); tz != "" {
		if location, err = time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid --timezone: %w", err)
		}
	}

	svc, err := reroute.NewService(reroute.ServiceConfig{
		Repository: train.NewInMemoryRepository(trains...),
		Clock:      func() time.Time { return now },
		Location:   location,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	result, err := svc.Compute(c.Context, c.String("train"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
