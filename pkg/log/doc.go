// Package log provides the logging abstraction used across overdrive.
//
// Components depend on the Logger interface only. Two implementations ship
// with the package: a zerolog adapter for the daemon and a no-op logger that
// is the library default.
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	logger.Info("listening", log.String("addr", addr))
//
// Real-time paths (packet receipt, actuation steps) do not log per call;
// they report through counters and the telemetry registry instead.
package log
