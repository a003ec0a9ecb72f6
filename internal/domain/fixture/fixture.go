// Package fixture builds league schedules and assigns referees to them.
package fixture

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchday/internal/domain/model"
)

// Sentinel errors.
var (
	ErrInsufficientReferees = errors.New("not enough referees for matchday")
	ErrTooFewTeams          = errors.New("a league needs at least two teams")
)

// dayKey groups fixtures played on the same calendar day.
func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// AssignReferees gives every fixture a referee so that nobody officiates two
// fixtures on the same day. It fails without modifying anything when a day has
// more fixtures than there are referees.
func AssignReferees(fixtures []model.Fixture, referees []model.Referee, rng *rand.Rand) ([]model.Fixture, error) {
	byDay := make(map[string][]int)
	for i, f := range fixtures {
		k := dayKey(f.Date)
		byDay[k] = append(byDay[k], i)
	}
	days := make([]string, 0, len(byDay))
	for k, idx := range byDay {
		if len(idx) > len(referees) {
			return nil, fmt.Errorf("%w: %s has %d fixtures and %d referees",
				ErrInsufficientReferees, k, len(idx), len(referees))
		}
		days = append(days, k)
	}
	sort.Strings(days)

	out := make([]model.Fixture, len(fixtures))
	copy(out, fixtures)
	for _, k := range days {
		perm := rng.Perm(len(referees))
		for j, i := range byDay[k] {
			out[i].RefereeID = referees[perm[j]].ID
		}
	}
	return out, nil
}

// RoundRobin schedules a double round robin for teams: every pair meets once
// at each ground. Matchday n is played at start + (n-1)*interval.
func RoundRobin(leagueID string, teamIDs []string, start time.Time, interval time.Duration) ([]model.Fixture, error) {
	if len(teamIDs) < 2 {
		return nil, ErrTooFewTeams
	}
	ring := append([]string(nil), teamIDs...)
	if len(ring)%2 == 1 {
		ring = append(ring, "") // bye
	}
	n := len(ring)
	rounds := n - 1

	var out []model.Fixture
	add := func(matchday int, home, away string) {
		if home == "" || away == "" {
			return
		}
		out = append(out, model.Fixture{
			ID:       uuid.NewString(),
			HomeID:   home,
			AwayID:   away,
			LeagueID: leagueID,
			Date:     start.Add(time.Duration(matchday-1) * interval),
			Matchday: matchday,
		})
	}
	for r := 0; r < rounds; r++ {
		for i := 0; i < n/2; i++ {
			home, away := ring[i], ring[n-1-i]
			if r%2 == 1 {
				home, away = away, home
			}
			add(r+1, home, away)
			add(r+1+rounds, away, home)
		}
		// rotate all but the first
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Matchday < out[j].Matchday })
	return out, nil
}

// Generate schedules leagueID and assigns referees. Generation is aborted
// with ErrInsufficientReferees when any matchday cannot be covered.
func Generate(leagueID string, teamIDs []string, referees []model.Referee, start time.Time, interval time.Duration, rng *rand.Rand) ([]model.Fixture, error) {
	fixtures, err := RoundRobin(leagueID, teamIDs, start, interval)
	if err != nil {
		return nil, err
	}
	return AssignReferees(fixtures, referees, rng)
}
