package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/rLg1290/7crm-sub003/internal/logging"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	logging.Init("flightquote-cli", "development")

	app := newCLIApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("quote failed")
		os.Exit(1)
	}
}
