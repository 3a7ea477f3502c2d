package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures the process logger.
type Options struct {
	Level  string    // debug, info, warn, error, trace; LOG_LEVEL wins when set
	File   string    // Log file path; empty logs to Output
	Pretty bool      // Human-readable console output, only valid without File
	Output io.Writer // Defaults to os.Stdout
}

// New builds a logger from opts. File and Pretty are mutually exclusive.
func New(opts Options) (zerolog.Logger, error) {
	if opts.File != "" && opts.Pretty {
		return zerolog.Logger{}, fmt.Errorf("log file and pretty output are mutually exclusive")
	}

	level := parseLogLevel(opts.Level)
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = parseLogLevel(envLevel)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	switch {
	case opts.File != "":
		//nolint:gosec // G304: User-specified log file path is intentional
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		output = file
	case opts.Pretty:
		output = zerolog.ConsoleWriter{Out: output}
	}

	log := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	switch {
	case opts.File != "":
		log.Debug().Str("path", opts.File).Str("level", level.String()).Msg("Logger initialized")
	case opts.Pretty:
		log.Debug().Str("format", "pretty").Str("level", level.String()).Msg("Logger initialized")
	default:
		log.Debug().Str("level", level.String()).Msg("Logger initialized")
	}

	return log, nil
}

// InitWithOptions initializes a stdout or file logger with the level taken from LOG_LEVEL.
func InitWithOptions(logFile string, pretty bool) (zerolog.Logger, error) {
	return New(Options{File: logFile, Pretty: pretty})
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
