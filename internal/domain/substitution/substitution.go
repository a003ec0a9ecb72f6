// Package substitution tracks who is on the pitch for one side and resolves
// replacements for cards, injuries and tactical changes.
package substitution

import (
	"slices"
	"sort"

	"github.com/okian/matchday/internal/domain/model"
)

const (
	defaultMaxSubstitutions = 5
	defaultKeeperDelay      = 30
)

// Rule names the step of the fallback chain that produced a replacement.
type Rule int

// Fallback chain, in priority order.
const (
	RuleExact Rule = iota
	RuleCompatible
	RuleFormation
	RuleNearest
)

func (r Rule) String() string {
	switch r {
	case RuleExact:
		return "exact"
	case RuleCompatible:
		return "compatible"
	case RuleFormation:
		return "formation"
	default:
		return "nearest"
	}
}

// compatible lists the codes a player may cover when nobody fits a slot exactly.
//
//nolint:gochecknoglobals // fixed lookup table
var compatible = map[model.PositionCode][]model.PositionCode{
	model.LB:  {model.LWB, model.LCB, model.LM},
	model.RB:  {model.RWB, model.RCB, model.RM},
	model.LCB: {model.CB, model.RCB, model.LB, model.DM},
	model.CB:  {model.LCB, model.RCB, model.DM},
	model.RCB: {model.CB, model.LCB, model.RB, model.DM},
	model.LWB: {model.LB, model.LM},
	model.RWB: {model.RB, model.RM},
	model.LDM: {model.DM, model.RDM, model.LCM, model.CB},
	model.DM:  {model.LDM, model.RDM, model.CM, model.CB},
	model.RDM: {model.DM, model.LDM, model.RCM, model.CB},
	model.LM:  {model.LW, model.LWB, model.LCM},
	model.LCM: {model.CM, model.RCM, model.LDM, model.LAM},
	model.CM:  {model.LCM, model.RCM, model.DM, model.AM},
	model.RCM: {model.CM, model.LCM, model.RDM, model.RAM},
	model.RM:  {model.RW, model.RWB, model.RCM},
	model.LAM: {model.AM, model.RAM, model.LW, model.LCM},
	model.AM:  {model.LAM, model.RAM, model.CM, model.ST},
	model.RAM: {model.AM, model.LAM, model.RW, model.RCM},
	model.LW:  {model.LM, model.LAM, model.LS},
	model.RW:  {model.RM, model.RAM, model.RS},
	model.LS:  {model.ST, model.RS, model.LW},
	model.ST:  {model.LS, model.RS, model.AM},
	model.RS:  {model.ST, model.LS, model.RW},
}

// Compatible returns the fallback codes for code.
func Compatible(code model.PositionCode) []model.PositionCode {
	return compatible[code]
}

// Swap describes a completed substitution.
type Swap struct {
	Off string
	On  string
	// Vacated is the slot Off left; Position is where On plays. They differ on
	// a formation change or when a keeper comes on for an outfielder.
	Vacated  model.PositionCode
	Position model.PositionCode
	Rule     Rule
}

// Appearance is one player's involvement, for lineup rows. A nil Start means
// the player came off the bench; a nil End means the player left the pitch.
type Appearance struct {
	PlayerID string
	Start    *model.PositionCode
	End      *model.PositionCode
}

// Team is the live lineup state of one side during a match. It is owned by a
// single match and is not safe for concurrent use.
type Team struct {
	roster      map[string]model.Player
	lineup      map[model.PositionCode]string
	bench       []string
	start       map[string]model.PositionCode
	appeared    []string
	maxSubs     int
	keeperDelay int
	used        int
	needKeeper  bool
}

// New creates the state of a side from its selection. The selection is copied.
func New(sel model.Selection, roster map[string]model.Player, opts ...Option) *Team {
	sel = sel.Clone()
	t := &Team{
		roster:      roster,
		lineup:      sel.Lineup,
		bench:       sel.Bench,
		start:       make(map[string]model.PositionCode, len(sel.Lineup)),
		maxSubs:     defaultMaxSubstitutions,
		keeperDelay: defaultKeeperDelay,
	}
	for _, code := range orderedCodes(sel.Lineup) {
		id := sel.Lineup[code]
		t.start[id] = code
		t.appeared = append(t.appeared, id)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Used returns the substitutions made so far.
func (t *Team) Used() int { return t.used }

// Remaining returns the substitutions still allowed.
func (t *Team) Remaining() int { return max(t.maxSubs-t.used, 0) }

// Bench returns the unused substitutes in order.
func (t *Team) Bench() []string { return slices.Clone(t.bench) }

// Lineup returns a copy of the current lineup.
func (t *Team) Lineup() map[model.PositionCode]string {
	out := make(map[model.PositionCode]string, len(t.lineup))
	for k, v := range t.lineup {
		out[k] = v
	}
	return out
}

// NeedsKeeper reports whether the goal is empty after a red card.
func (t *Team) NeedsKeeper() bool { return t.needKeeper }

// PositionOf returns the slot id currently plays.
func (t *Team) PositionOf(id string) (model.PositionCode, bool) {
	for code, p := range t.lineup {
		if p == id {
			return code, true
		}
	}
	return "", false
}

// OnPitch returns the players on the pitch in pitch order, goalkeeper first.
func (t *Team) OnPitch() []string {
	codes := orderedCodes(t.lineup)
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, t.lineup[c])
	}
	return out
}

// Player returns roster data for id.
func (t *Team) Player(id string) (model.Player, bool) {
	p, ok := t.roster[id]
	return p, ok
}

// SendOff removes id from the pitch without a replacement.
func (t *Team) SendOff(id string) (model.PositionCode, bool) {
	code, ok := t.PositionOf(id)
	if !ok {
		return "", false
	}
	delete(t.lineup, code)
	return code, true
}

// Substitute replaces off with the best bench player. It reports false when
// off is not on the pitch, the allowance is used up or the bench is empty.
// While the goal is empty the newcomer goes in goal instead of off's slot.
func (t *Team) Substitute(off string) (Swap, bool) {
	if t.used >= t.maxSubs || len(t.bench) == 0 {
		return Swap{}, false
	}
	vacated, ok := t.PositionOf(off)
	if !ok {
		return Swap{}, false
	}
	target := vacated
	if t.needKeeper {
		target = model.GK
	}

	idx, pos, rule := t.choose(target)
	on := t.bench[idx]
	t.bench = slices.Delete(t.bench, idx, idx+1)
	delete(t.lineup, vacated)
	t.lineup[pos] = on
	t.appeared = append(t.appeared, on)
	t.used++
	if pos == model.GK {
		t.needKeeper = false
	}
	return Swap{Off: off, On: on, Vacated: vacated, Position: pos, Rule: rule}, true
}

// choose walks the fallback chain for target and returns the bench index, the
// slot the player will take and the rule that matched.
func (t *Team) choose(target model.PositionCode) (int, model.PositionCode, Rule) {
	for i, id := range t.bench {
		if t.roster[id].CanPlay(target) {
			return i, target, RuleExact
		}
	}
	for _, code := range compatible[target] {
		for i, id := range t.bench {
			if t.roster[id].CanPlay(code) {
				return i, target, RuleCompatible
			}
		}
	}
	if target != model.GK {
		for i, id := range t.bench {
			for _, code := range t.roster[id].SpecificPositions {
				if _, taken := t.lineup[code]; !taken && code != model.GK {
					return i, code, RuleFormation
				}
			}
		}
	}
	return 0, target, RuleNearest
}

// KeeperSentOff handles a goalkeeper's red card at card; the keeper must
// already be off the pitch. With allowance and bench left it schedules a
// substitution in tl that takes an outfielder off for a keeper and returns
// its time. Otherwise an outfielder goes in goal and false is returned.
func (t *Team) KeeperSentOff(tl *model.Timeline, card model.EventTime) (model.EventTime, bool) {
	t.needKeeper = true
	if t.Remaining() == 0 || len(t.bench) == 0 {
		t.ForceIntoGoal()
		return model.EventTime{}, false
	}
	off, ok := t.outfielder()
	if !ok {
		t.needKeeper = false
		return model.EventTime{}, false
	}
	slot := tl.FreeSlot(card.Advance(t.keeperDelay))
	if !card.Less(slot) {
		t.ForceIntoGoal()
		return model.EventTime{}, false
	}
	return tl.Insert(model.Event{Time: slot, Type: model.EventSubstitution, PlayerOff: off, Forced: true}), true
}

// ForceIntoGoal moves an outfielder, forwards first, into the empty goal
// without using a substitution. It returns the player moved.
func (t *Team) ForceIntoGoal() (string, bool) {
	if !t.needKeeper {
		return "", false
	}
	id, ok := t.outfielder()
	if !ok {
		return "", false
	}
	code, _ := t.PositionOf(id)
	delete(t.lineup, code)
	t.lineup[model.GK] = id
	t.needKeeper = false
	return id, true
}

// outfielder returns the most attacking outfield player on the pitch.
func (t *Team) outfielder() (string, bool) {
	codes := orderedCodes(t.lineup)
	for i := len(codes) - 1; i >= 0; i-- {
		if codes[i] != model.GK {
			return t.lineup[codes[i]], true
		}
	}
	return "", false
}

// Appearances lists every player who took part, starters first.
func (t *Team) Appearances() []Appearance {
	out := make([]Appearance, 0, len(t.appeared))
	for _, id := range t.appeared {
		a := Appearance{PlayerID: id}
		if code, ok := t.start[id]; ok {
			a.Start = &code
		}
		if code, ok := t.PositionOf(id); ok {
			a.End = &code
		}
		out = append(out, a)
	}
	return out
}

// orderedCodes returns the occupied codes in pitch order; unknown codes follow
// alphabetically.
func orderedCodes(lineup map[model.PositionCode]string) []model.PositionCode {
	out := make([]model.PositionCode, 0, len(lineup))
	for _, c := range model.AllPositionCodes {
		if _, ok := lineup[c]; ok {
			out = append(out, c)
		}
	}
	var extra []model.PositionCode
	for c := range lineup {
		if !slices.Contains(model.AllPositionCodes, c) {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
