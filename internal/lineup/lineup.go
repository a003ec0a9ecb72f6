// Package lineup picks a starting eleven and a bench from a squad. It is the
// default selector used when a team's manager has not set one.
package lineup

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/substitution"
)

// Starters is the size of a starting eleven.
const Starters = 11

const defaultBenchSize = 7

// ErrNotEnoughPlayers is returned when fewer than eleven players are available.
var ErrNotEnoughPlayers = errors.New("not enough available players")

// Selector fills a formation with the strongest available players.
type Selector struct {
	formation []model.PositionCode
	benchSize int
}

// NewSelector returns a Selector for a 4-4-2 with a bench of seven.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		formation: []model.PositionCode{
			model.GK, model.LCB, model.RCB, model.LB, model.RB,
			model.LCM, model.RCM, model.LM, model.RM, model.LS, model.RS,
		},
		benchSize: defaultBenchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// strength is ability scaled by the player's current condition.
func strength(p model.Player) float64 {
	return p.CurrentAbility * match.Condition(p)
}

// Select picks a selection from squad, skipping players with an active ban.
// Each slot takes, in order, the strongest player who plays it, then one who
// plays a compatible code, then one with the same general position, then the
// strongest left.
func (s *Selector) Select(squad []model.Player, bans []model.Ban) (model.Selection, error) {
	banned := make(map[string]bool, len(bans))
	for _, b := range bans {
		if b.Length > 0 {
			banned[b.PlayerID] = true
		}
	}
	pool := make([]model.Player, 0, len(squad))
	for _, p := range squad {
		if !banned[p.ID] {
			pool = append(pool, p)
		}
	}
	if len(pool) < Starters {
		return model.Selection{}, fmt.Errorf("%w: %d of %d", ErrNotEnoughPlayers, len(pool), Starters)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := strength(pool[i]), strength(pool[j])
		if si != sj {
			return si > sj
		}
		return pool[i].ID < pool[j].ID
	})

	used := make(map[string]bool, Starters+s.benchSize)
	take := func(fits func(model.Player) bool) (string, bool) {
		for _, p := range pool {
			if !used[p.ID] && fits(p) {
				used[p.ID] = true
				return p.ID, true
			}
		}
		return "", false
	}

	sel := model.Selection{Lineup: make(map[model.PositionCode]string, Starters)}
	for _, code := range s.formation {
		general := code.General()
		compatible := substitution.Compatible(code)
		id, ok := take(func(p model.Player) bool { return p.CanPlay(code) })
		if !ok {
			id, ok = take(func(p model.Player) bool {
				for _, c := range compatible {
					if p.CanPlay(c) {
						return true
					}
				}
				return false
			})
		}
		if !ok {
			id, ok = take(func(p model.Player) bool { return p.Position == general })
		}
		if !ok {
			id, _ = take(func(model.Player) bool { return true })
		}
		sel.Lineup[code] = id
	}

	// a reserve keeper first, then the strongest of the rest
	if s.benchSize > 0 {
		if id, ok := take(func(p model.Player) bool { return p.Position == model.Goalkeeper }); ok {
			sel.Bench = append(sel.Bench, id)
		}
	}
	for len(sel.Bench) < s.benchSize {
		id, ok := take(func(model.Player) bool { return true })
		if !ok {
			break
		}
		sel.Bench = append(sel.Bench, id)
	}
	return sel, nil
}
