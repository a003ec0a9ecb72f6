package model

import "time"

// Severity describes how readily a referee books players.
type Severity string

// Referee severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Fixture is a scheduled match. It is read once per simulation and never mutated by it.
type Fixture struct {
	ID        string
	HomeID    string
	AwayID    string
	RefereeID string
	LeagueID  string
	Date      time.Time
	Matchday  int
	Played    bool
}

// Team is a club taking part in a league.
type Team struct {
	ID             string
	Name           string
	LeagueID       string
	UserControlled bool
}

// Player is a roster entry. Morale, Fitness and Sharpness are on a 0-100 scale.
type Player struct {
	ID                string
	TeamID            string
	Name              string
	Position          Position
	SpecificPositions []PositionCode
	CurrentAbility    float64
	Morale            float64
	Fitness           float64
	Sharpness         float64
}

// CanPlay reports whether code is one of the player's specific positions.
func (p Player) CanPlay(code PositionCode) bool {
	for _, c := range p.SpecificPositions {
		if c == code {
			return true
		}
	}
	return false
}

// Referee officiates fixtures.
type Referee struct {
	ID       string
	Name     string
	Severity Severity
}

// Selection is the output of the lineup collaborator for one side: the
// starting eleven keyed by position code and an ordered bench.
type Selection struct {
	Lineup map[PositionCode]string
	Bench  []string
}

// Clone returns a deep copy so the caller can mutate it freely.
func (s Selection) Clone() Selection {
	out := Selection{
		Lineup: make(map[PositionCode]string, len(s.Lineup)),
		Bench:  append([]string(nil), s.Bench...),
	}
	for k, v := range s.Lineup {
		out.Lineup[k] = v
	}
	return out
}

// TableRow is one team's line in a league table.
type TableRow struct {
	LeagueID     string `json:"league_id"`
	TeamID       string `json:"team_id"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
}

// GoalDifference returns goals for minus goals against.
func (r TableRow) GoalDifference() int { return r.GoalsFor - r.GoalsAgainst }

// Snapshot is a historical copy of a table taken after a completed matchday.
type Snapshot struct {
	LeagueID string     `json:"league_id"`
	Matchday int        `json:"matchday"`
	Rows     []TableRow `json:"rows"`
}
