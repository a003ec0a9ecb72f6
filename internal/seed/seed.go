// Package seed generates a self-contained demo league: teams, squads,
// referees and a double round-robin schedule.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchday/internal/adapters/repository"
	"github.com/okian/matchday/internal/domain/fixture"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/pkg/logger"
)

// Ability and condition ranges of generated players.
const (
	abilityMin   = 45.0
	abilityRange = 40.0
	moraleMin    = 55.0
	moraleRange  = 30.0
	fitnessMin   = 80.0
	fitnessRange = 20.0
)

// ErrInvalidConfig is returned for a league that cannot be scheduled.
var ErrInvalidConfig = errors.New("invalid seed config")

// squad is the shape of every generated roster.
var squad = []struct {
	position model.Position
	codes    []model.PositionCode
}{
	{model.Goalkeeper, []model.PositionCode{model.GK}},
	{model.Goalkeeper, []model.PositionCode{model.GK}},
	{model.Defender, []model.PositionCode{model.LCB, model.CB}},
	{model.Defender, []model.PositionCode{model.RCB, model.CB}},
	{model.Defender, []model.PositionCode{model.CB, model.LCB, model.RCB}},
	{model.Defender, []model.PositionCode{model.LB, model.LWB}},
	{model.Defender, []model.PositionCode{model.RB, model.RWB}},
	{model.Defender, []model.PositionCode{model.LB, model.RB}},
	{model.Midfielder, []model.PositionCode{model.LCM, model.CM}},
	{model.Midfielder, []model.PositionCode{model.RCM, model.CM}},
	{model.Midfielder, []model.PositionCode{model.DM, model.LDM, model.RDM}},
	{model.Midfielder, []model.PositionCode{model.LM, model.LW}},
	{model.Midfielder, []model.PositionCode{model.RM, model.RW}},
	{model.Midfielder, []model.PositionCode{model.AM, model.CM}},
	{model.Forward, []model.PositionCode{model.LS, model.ST}},
	{model.Forward, []model.PositionCode{model.RS, model.ST}},
	{model.Forward, []model.PositionCode{model.ST, model.LS, model.RS}},
	{model.Forward, []model.PositionCode{model.LW, model.RW}},
}

// DefaultStart is the kickoff of the demo league's first matchday.
var DefaultStart = time.Date(2025, time.August, 16, 15, 0, 0, 0, time.UTC)

// SquadSize is the number of players generated per team.
var SquadSize = len(squad)

// Config describes the league to generate.
type Config struct {
	LeagueID string
	Teams    int
	Referees int
	// UserTeams marks the first n teams as user-controlled.
	UserTeams int
	Start     time.Time
	Interval  time.Duration
	Seed      int64
}

// DefaultConfig is a ten-team league playing weekly from start.
func DefaultConfig(start time.Time) Config {
	return Config{
		LeagueID:  "demo",
		Teams:     10,
		Referees:  8,
		UserTeams: 1,
		Start:     start,
		Interval:  7 * 24 * time.Hour,
		Seed:      1,
	}
}

func (c Config) validate() error {
	switch {
	case c.LeagueID == "":
		return fmt.Errorf("%w: league id is required", ErrInvalidConfig)
	case c.Teams < 2:
		return fmt.Errorf("%w: need at least two teams, got %d", ErrInvalidConfig, c.Teams)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Generate builds a Dataset from cfg. Teams, players and referees are derived
// from cfg.Seed; fixture ids are fresh on every call.
func Generate(ctx context.Context, cfg Config) (repository.Dataset, error) {
	if err := cfg.validate(); err != nil {
		return repository.Dataset{}, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic demo data
	id := func() string {
		u, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return uuid.NewString()
		}
		return u.String()
	}

	var ds repository.Dataset
	teamIDs := make([]string, cfg.Teams)
	for i := range teamIDs {
		t := model.Team{
			ID:             id(),
			Name:           fmt.Sprintf("%s FC %02d", cfg.LeagueID, i+1),
			LeagueID:       cfg.LeagueID,
			UserControlled: i < cfg.UserTeams,
		}
		teamIDs[i] = t.ID
		ds.Teams = append(ds.Teams, t)
		for j, slot := range squad {
			ds.Players = append(ds.Players, model.Player{
				ID:                id(),
				TeamID:            t.ID,
				Name:              fmt.Sprintf("%s #%d", t.Name, j+1),
				Position:          slot.position,
				SpecificPositions: append([]model.PositionCode(nil), slot.codes...),
				CurrentAbility:    abilityMin + rng.Float64()*abilityRange,
				Morale:            moraleMin + rng.Float64()*moraleRange,
				Fitness:           fitnessMin + rng.Float64()*fitnessRange,
				Sharpness:         fitnessMin + rng.Float64()*fitnessRange,
			})
		}
	}

	severities := []model.Severity{model.SeverityLow, model.SeverityMedium, model.SeverityHigh}
	for i := 0; i < cfg.Referees; i++ {
		ds.Referees = append(ds.Referees, model.Referee{
			ID:       id(),
			Name:     fmt.Sprintf("Referee %02d", i+1),
			Severity: severities[i%len(severities)],
		})
	}

	fixtures, err := fixture.Generate(cfg.LeagueID, teamIDs, ds.Referees, cfg.Start, cfg.Interval, rng)
	if err != nil {
		return repository.Dataset{}, fmt.Errorf("schedule %s: %w", cfg.LeagueID, err)
	}
	ds.Fixtures = fixtures

	logger.Get().Named("seed").Debug(ctx, "generated league",
		logger.String("league_id", cfg.LeagueID),
		logger.Int("teams", len(ds.Teams)),
		logger.Int("players", len(ds.Players)),
		logger.Int("fixtures", len(ds.Fixtures)),
	)
	return ds, nil
}

// Matchdays returns the number of matchdays in a double round robin for n teams.
func Matchdays(n int) int {
	if n%2 == 1 {
		n++
	}
	return 2 * (n - 1)
}
