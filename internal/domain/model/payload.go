package model

// BanType classifies a suspension.
type BanType string

// Ban types.
const (
	BanRedCard            BanType = "red_card"
	BanInjury             BanType = "injury"
	BanYellowAccumulation BanType = "yellow_accumulation"
)

// TurnaroundKind classifies a match that swung after a lead.
type TurnaroundKind string

// Turnaround kinds.
const (
	ComebackWin TurnaroundKind = "comeback_win"
	ChokeLoss   TurnaroundKind = "choke_loss"
)

// EventRow is an event as persisted.
type EventRow struct {
	MatchID     string    `json:"match_id"`
	TeamID      string    `json:"team_id"`
	Sequence    int       `json:"sequence"`
	Type        EventType `json:"type"`
	Minute      string    `json:"minute"`
	PlayerID    string    `json:"player_id"`
	AssisterID  string    `json:"assister_id,omitempty"`
	PlayerOffID string    `json:"player_off_id,omitempty"`
}

// ScoreRow is a final score; writing it marks the fixture as played.
type ScoreRow struct {
	MatchID string `json:"match_id"`
	Home    int    `json:"home"`
	Away    int    `json:"away"`
}

// LineupRow records one appearance. A nil StartPosition means the player came
// off the bench; a nil EndPosition means the player left the pitch.
type LineupRow struct {
	MatchID       string        `json:"match_id"`
	TeamID        string        `json:"team_id"`
	PlayerID      string        `json:"player_id"`
	StartPosition *PositionCode `json:"start_position"`
	EndPosition   *PositionCode `json:"end_position"`
	Rating        float64       `json:"rating"`
}

// TableDelta is one team's league table change from a single match.
type TableDelta struct {
	LeagueID     string `json:"league_id"`
	TeamID       string `json:"team_id"`
	Played       int    `json:"played"`
	Points       int    `json:"points"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
}

// MoraleDelta adjusts a player's morale.
type MoraleDelta struct {
	TeamID   string  `json:"team_id"`
	PlayerID string  `json:"player_id"`
	Delta    float64 `json:"delta"`
}

// Ban suspends a player for Length matches of a competition.
type Ban struct {
	PlayerID    string  `json:"player_id"`
	TeamID      string  `json:"team_id"`
	Type        BanType `json:"type"`
	Length      int     `json:"length"`
	Competition string  `json:"competition"`
}

// YellowCheck asks for a yellow-card accumulation check after persistence.
type YellowCheck struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	LeagueID string `json:"league_id"`
}

// Turnaround records a comeback win or a choke loss.
type Turnaround struct {
	MatchID string         `json:"match_id"`
	TeamID  string         `json:"team_id"`
	Kind    TurnaroundKind `json:"kind"`
	Deficit int            `json:"deficit"`
}

// Payload bundles the storage mutations produced by one or more matches.
// All fields are independent lists so merging is concatenation.
type Payload struct {
	Events       []EventRow    `json:"events"`
	Scores       []ScoreRow    `json:"scores"`
	Lineups      []LineupRow   `json:"lineups"`
	Table        []TableDelta  `json:"table"`
	Morale       []MoraleDelta `json:"morale"`
	Bans         []Ban         `json:"bans"`
	YellowChecks []YellowCheck `json:"yellow_checks"`
	Turnarounds  []Turnaround  `json:"turnarounds"`
}

// Merge appends every list of o to p.
func (p *Payload) Merge(o Payload) {
	p.Events = append(p.Events, o.Events...)
	p.Scores = append(p.Scores, o.Scores...)
	p.Lineups = append(p.Lineups, o.Lineups...)
	p.Table = append(p.Table, o.Table...)
	p.Morale = append(p.Morale, o.Morale...)
	p.Bans = append(p.Bans, o.Bans...)
	p.YellowChecks = append(p.YellowChecks, o.YellowChecks...)
	p.Turnarounds = append(p.Turnarounds, o.Turnarounds...)
}

// Pool concatenates payloads into one pooled payload.
func Pool(payloads ...Payload) Payload {
	var out Payload
	for _, p := range payloads {
		out.Merge(p)
	}
	return out
}

// Rows returns the total number of rows across all lists.
func (p Payload) Rows() int {
	return len(p.Events) + len(p.Scores) + len(p.Lineups) + len(p.Table) +
		len(p.Morale) + len(p.Bans) + len(p.YellowChecks) + len(p.Turnarounds)
}

// Leagues returns the distinct league ids touched by the table deltas.
func (p Payload) Leagues() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range p.Table {
		if !seen[d.LeagueID] {
			seen[d.LeagueID] = true
			out = append(out, d.LeagueID)
		}
	}
	return out
}
