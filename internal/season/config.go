package season

import "time"

// Config holds configuration for a season run.
type Config struct {
	BaseURL      string        // Base URL of a running service; empty runs in-process
	LeagueID     string        // League to simulate
	Teams        int           // Number of generated teams (in-process only)
	Referees     int           // Number of generated referees (in-process only)
	Start        time.Time     // Date of the first matchday
	Interval     time.Duration // Time between matchdays
	Matchdays    int           // Number of matchdays to run; 0 runs the whole season
	Workers      int           // Batch worker count (in-process only)
	Seed         int64         // Base seed
	DatabasePath string        // Optional sqlite file (in-process only)
	Timeout      time.Duration // HTTP request timeout
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	Matchdays  int
	Simulated  int
	Failed     int
	Narratives int
	Bans       int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Row is a printable table line.
type Row struct {
	Team         string
	Played       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}
