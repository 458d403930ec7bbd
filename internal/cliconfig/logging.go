package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/overdrive/pkg/log"
)

// Logger returns the console logger used by the CLI at the given level.
// An unparseable level falls back to info.
func Logger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return log.NewConsoleLogger(os.Stderr, lvl)
}
