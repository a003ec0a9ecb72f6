// Package repository defines the league storage contract and its memory and
// sqlite implementations.
package repository

import (
	"context"
	"time"

	"github.com/okian/matchday/internal/domain/model"
)

// Dataset is the static league data a store is seeded with.
type Dataset struct {
	Teams    []model.Team
	Players  []model.Player
	Referees []model.Referee
	Fixtures []model.Fixture
}

// Reader provides read access to league state.
type Reader interface {
	// FixturesBetween returns fixtures dated within [from, to], played or not,
	// ordered by date then id.
	FixturesBetween(ctx context.Context, from, to time.Time) ([]model.Fixture, error)
	// Fixture returns ErrNotFound for an unknown id.
	Fixture(ctx context.Context, id string) (model.Fixture, error)
	// MatchdayFixtures returns every fixture of one league matchday.
	MatchdayFixtures(ctx context.Context, leagueID string, matchday int) ([]model.Fixture, error)

	Team(ctx context.Context, id string) (model.Team, error)
	Teams(ctx context.Context, leagueID string) ([]model.Team, error)
	Players(ctx context.Context, teamID string) ([]model.Player, error)
	Referee(ctx context.Context, id string) (model.Referee, error)
	Referees(ctx context.Context) ([]model.Referee, error)

	// Bans returns the active suspensions of a team. Length is the number of
	// matches still to serve.
	Bans(ctx context.Context, teamID string) ([]model.Ban, error)
	// YellowCards returns the bookings a player has collected since their last
	// accumulation ban.
	YellowCards(ctx context.Context, playerID string) (int, error)

	// Standings returns the league table, sorted. Empty for a league that has
	// not played yet.
	Standings(ctx context.Context, leagueID string) ([]model.TableRow, error)
	// History returns table snapshots ordered by matchday.
	History(ctx context.Context, leagueID string) ([]model.Snapshot, error)
	// Events returns the persisted events of a match ordered by sequence.
	Events(ctx context.Context, matchID string) ([]model.EventRow, error)
}

// Copy is a private snapshot of a store owned by one worker. Reads never
// contend with the shared store and writes stay local until committed.
type Copy interface {
	Reader
	ID() string
	Write(ctx context.Context, p model.Payload) error
}

// Store provides read/write access to league state.
type Store interface {
	Reader

	// Import adds static league data. Existing ids are overwritten.
	Import(ctx context.Context, d Dataset) error

	// Write persists a pooled payload atomically: fixtures are marked played,
	// rows are appended, morale is adjusted and bans are served and added.
	// Table deltas are left to SaveStandings. A fixture that is unknown or
	// already played fails the whole write.
	Write(ctx context.Context, p model.Payload) error
	SaveStandings(ctx context.Context, leagueID string, rows []model.TableRow) error
	// AppendHistory stores a snapshot, replacing one for the same matchday.
	AppendHistory(ctx context.Context, s model.Snapshot) error
	// AddBans stores suspensions. A yellow accumulation ban clears the
	// player's booking tally.
	AddBans(ctx context.Context, bans []model.Ban) error

	BeginCopy(ctx context.Context) (Copy, error)
	// CommitCopy replays the copy's writes onto the store and releases it.
	CommitCopy(ctx context.Context, c Copy) error
	// DiscardCopy releases the copy and drops its writes.
	DiscardCopy(ctx context.Context, c Copy) error

	Close() error
}
