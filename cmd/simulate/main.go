package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/matchday/internal/season"
	"github.com/okian/matchday/internal/seed"
)

// Default configuration constants.
const (
	defaultLeague    = "demo"
	defaultTeams     = 10
	defaultReferees  = 8
	defaultSeed      = 1
	defaultInterval  = 7 * 24 * time.Hour
	defaultTimeout   = 2 * time.Minute
	defaultRunTimeout = 30 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "", "Base URL of a running service; empty runs in-process")
		leagueID  = flag.String("league", defaultLeague, "League id")
		teams     = flag.Int("teams", defaultTeams, "Number of teams to generate")
		referees  = flag.Int("referees", defaultReferees, "Number of referees to generate")
		start     = flag.String("start", seed.DefaultStart.Format(time.RFC3339), "RFC3339 date of the first matchday")
		matchdays = flag.Int("matchdays", 0, "Matchdays to play; 0 plays the whole season")
		workers   = flag.Int("workers", max(runtime.NumCPU()-1, 1), "Batch workers")
		seedVal   = flag.Int64("seed", defaultSeed, "Base seed")
		dbPath    = flag.String("db", "", "Optional sqlite file for the league")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file (default: season_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		season.ShowHelp(os.Stdout)
		return
	}

	first, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		os.Stderr.WriteString("invalid -start: " + err.Error() + "\n")
		os.Exit(2)
	}

	closer, err := season.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &season.Config{
		BaseURL:      *baseURL,
		LeagueID:     *leagueID,
		Teams:        *teams,
		Referees:     *referees,
		Start:        first,
		Interval:     defaultInterval,
		Matchdays:    *matchdays,
		Workers:      *workers,
		Seed:         *seedVal,
		DatabasePath: *dbPath,
		Timeout:      *timeout,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	rows, stats, err := season.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("Season failed: " + err.Error() + "\n")
		return
	}
	_ = season.PrintTable(os.Stdout, rows)
	season.PrintStats(os.Stdout, stats)
}
