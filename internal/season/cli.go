package season

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/okian/matchday/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging sends logs to stderr and to logFile. If logFile is empty, a
// timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "season_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWith(io.MultiWriter(os.Stderr, file), "text"); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the season tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `matchday season simulator
=========================

Seeds a demo league and plays it one matchday at a time, or drives a running
matchday service over HTTP.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of a running service; empty runs in-process
  -league string
        League id (default "demo")
  -teams int
        Number of teams to generate (default 10)
  -referees int
        Number of referees to generate (default 8)
  -start string
        RFC3339 date of the first matchday (default 2025-08-16T15:00:00Z)
  -matchdays int
        Matchdays to play; 0 plays the whole season
  -workers int
        Batch workers (default CPU cores - 1)
  -seed int
        Base seed (default 1)
  -db string
        Optional sqlite file for the league
  -timeout duration
        HTTP request timeout (default 2m)
  -log string
        Log file (default: season_TIMESTAMP.log)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Play a full ten-team season in memory
  go run ./cmd/simulate

  # Play five matchdays of a running service's demo league
  go run ./cmd/simulate -url http://localhost:9080 -matchdays 5
`)
}
