// Package standings maintains league tables and detects the stories they tell.
package standings

import (
	"sort"

	"github.com/okian/matchday/internal/domain/model"
)

// Kind classifies a narrative.
type Kind string

// Narrative kinds.
const (
	LeadChange        Kind = "lead_change"
	EnteredRelegation Kind = "relegation_entered"
	LeftRelegation    Kind = "relegation_left"
)

// Narrative is a noteworthy table movement after a matchday.
type Narrative struct {
	LeagueID string `json:"league_id"`
	Matchday int    `json:"matchday"`
	Kind     Kind   `json:"kind"`
	TeamID   string `json:"team_id"`
	// Previous is the former leader for a lead change.
	Previous string `json:"previous,omitempty"`
}

// Apply returns rows with deltas added. Teams without a row get one. The
// input rows are not modified.
func Apply(rows []model.TableRow, deltas []model.TableDelta) []model.TableRow {
	out := make([]model.TableRow, len(rows))
	copy(out, rows)
	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.TeamID] = i
	}
	for _, d := range deltas {
		i, ok := index[d.TeamID]
		if !ok {
			out = append(out, model.TableRow{LeagueID: d.LeagueID, TeamID: d.TeamID})
			i = len(out) - 1
			index[d.TeamID] = i
		}
		r := &out[i]
		r.Played += d.Played
		r.Wins += d.Wins
		r.Draws += d.Draws
		r.Losses += d.Losses
		r.GoalsFor += d.GoalsFor
		r.GoalsAgainst += d.GoalsAgainst
		r.Points += d.Points
	}
	Sort(out)
	return out
}

// Sort orders rows by points, goal difference, goals scored and team id.
func Sort(rows []model.TableRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.Points != b.Points:
			return a.Points > b.Points
		case a.GoalDifference() != b.GoalDifference():
			return a.GoalDifference() > b.GoalDifference()
		case a.GoalsFor != b.GoalsFor:
			return a.GoalsFor > b.GoalsFor
		default:
			return a.TeamID < b.TeamID
		}
	})
}

// Narratives compares two sorted tables of the same league. The bottom
// relegationSlots rows form the relegation zone.
func Narratives(leagueID string, matchday int, prev, next []model.TableRow, relegationSlots int) []Narrative {
	if len(prev) == 0 || len(next) == 0 {
		return nil
	}
	var out []Narrative
	if prev[0].TeamID != next[0].TeamID {
		out = append(out, Narrative{
			LeagueID: leagueID, Matchday: matchday, Kind: LeadChange,
			TeamID: next[0].TeamID, Previous: prev[0].TeamID,
		})
	}
	before, after := zone(prev, relegationSlots), zone(next, relegationSlots)
	for _, r := range next {
		switch {
		case after[r.TeamID] && !before[r.TeamID]:
			out = append(out, Narrative{LeagueID: leagueID, Matchday: matchday, Kind: EnteredRelegation, TeamID: r.TeamID})
		case before[r.TeamID] && !after[r.TeamID]:
			out = append(out, Narrative{LeagueID: leagueID, Matchday: matchday, Kind: LeftRelegation, TeamID: r.TeamID})
		}
	}
	return out
}

func zone(rows []model.TableRow, slots int) map[string]bool {
	out := make(map[string]bool, slots)
	if slots <= 0 || slots >= len(rows) {
		return out
	}
	for _, r := range rows[len(rows)-slots:] {
		out[r.TeamID] = true
	}
	return out
}
