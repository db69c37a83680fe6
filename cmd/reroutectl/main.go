// Command reroutectl computes reroute suggestions offline from a seed file.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)

	if err := newApp(os.Stdout, logger).Run(os.Args); err != nil {
		logger.Fatal().Err(err).Send()
	}
}
