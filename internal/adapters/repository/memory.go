package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/standings"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
)

// state holds everything a MemoryStore knows. It is guarded by the owning
// store's lock.
type state struct {
	fixtures    map[string]model.Fixture
	scores      map[string]model.ScoreRow
	teams       map[string]model.Team
	players     map[string]model.Player
	referees    map[string]model.Referee
	events      map[string][]model.EventRow
	lineups     map[string][]model.LineupRow
	tables      map[string][]model.TableRow
	history     map[string][]model.Snapshot
	bans        []model.Ban
	yellows     map[string]int
	turnarounds []model.Turnaround
}

func newState() *state {
	return &state{
		fixtures: make(map[string]model.Fixture),
		scores:   make(map[string]model.ScoreRow),
		teams:    make(map[string]model.Team),
		players:  make(map[string]model.Player),
		referees: make(map[string]model.Referee),
		events:   make(map[string][]model.EventRow),
		lineups:  make(map[string][]model.LineupRow),
		tables:   make(map[string][]model.TableRow),
		history:  make(map[string][]model.Snapshot),
		yellows:  make(map[string]int),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlices[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

// clone copies every container. Rows themselves are values and shared
// pointers inside them (lineup positions) are never mutated.
func (st *state) clone() *state {
	return &state{
		fixtures:    cloneMap(st.fixtures),
		scores:      cloneMap(st.scores),
		teams:       cloneMap(st.teams),
		players:     cloneMap(st.players),
		referees:    cloneMap(st.referees),
		events:      cloneSlices(st.events),
		lineups:     cloneSlices(st.lineups),
		tables:      cloneSlices(st.tables),
		history:     cloneSlices(st.history),
		bans:        append([]model.Ban(nil), st.bans...),
		yellows:     cloneMap(st.yellows),
		turnarounds: append([]model.Turnaround(nil), st.turnarounds...),
	}
}

// MemoryStore keeps league state in maps behind a RWMutex. Copies are deep
// snapshots of the maps.
type MemoryStore struct {
	mu     sync.RWMutex
	st     *state
	copies map[string]*memoryCopy
	logger logger.Logger
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		st:     newState(),
		copies: make(map[string]*memoryCopy),
		logger: o.logger,
	}
}

func sortFixtures(fs []model.Fixture) {
	sort.Slice(fs, func(i, j int) bool {
		if !fs[i].Date.Equal(fs[j].Date) {
			return fs[i].Date.Before(fs[j].Date)
		}
		return fs[i].ID < fs[j].ID
	})
}

// FixturesBetween implements Reader.
func (s *MemoryStore) FixturesBetween(_ context.Context, from, to time.Time) ([]model.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Fixture
	for _, f := range s.st.fixtures {
		if !f.Date.Before(from) && !f.Date.After(to) {
			out = append(out, f)
		}
	}
	sortFixtures(out)
	return out, nil
}

// Fixture implements Reader.
func (s *MemoryStore) Fixture(_ context.Context, id string) (model.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.st.fixtures[id]
	if !ok {
		return model.Fixture{}, fmt.Errorf("fixture %s: %w", id, ErrNotFound)
	}
	return f, nil
}

// MatchdayFixtures implements Reader.
func (s *MemoryStore) MatchdayFixtures(_ context.Context, leagueID string, matchday int) ([]model.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Fixture
	for _, f := range s.st.fixtures {
		if f.LeagueID == leagueID && f.Matchday == matchday {
			out = append(out, f)
		}
	}
	sortFixtures(out)
	return out, nil
}

// Team implements Reader.
func (s *MemoryStore) Team(_ context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.st.teams[id]
	if !ok {
		return model.Team{}, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// Teams implements Reader.
func (s *MemoryStore) Teams(_ context.Context, leagueID string) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Team
	for _, t := range s.st.teams {
		if t.LeagueID == leagueID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Players implements Reader.
func (s *MemoryStore) Players(_ context.Context, teamID string) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Player
	for _, p := range s.st.players {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Referee implements Reader.
func (s *MemoryStore) Referee(_ context.Context, id string) (model.Referee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.st.referees[id]
	if !ok {
		return model.Referee{}, fmt.Errorf("referee %s: %w", id, ErrNotFound)
	}
	return r, nil
}

// Referees implements Reader.
func (s *MemoryStore) Referees(_ context.Context) ([]model.Referee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Referee, 0, len(s.st.referees))
	for _, r := range s.st.referees {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Bans implements Reader.
func (s *MemoryStore) Bans(_ context.Context, teamID string) ([]model.Ban, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Ban
	for _, b := range s.st.bans {
		if b.TeamID == teamID {
			out = append(out, b)
		}
	}
	return out, nil
}

// YellowCards implements Reader.
func (s *MemoryStore) YellowCards(_ context.Context, playerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.yellows[playerID], nil
}

// Standings implements Reader.
func (s *MemoryStore) Standings(_ context.Context, leagueID string) ([]model.TableRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TableRow(nil), s.st.tables[leagueID]...), nil
}

// History implements Reader.
func (s *MemoryStore) History(_ context.Context, leagueID string) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Snapshot(nil), s.st.history[leagueID]...), nil
}

// Events implements Reader.
func (s *MemoryStore) Events(_ context.Context, matchID string) ([]model.EventRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.EventRow(nil), s.st.events[matchID]...), nil
}

// Import implements Store.
func (s *MemoryStore) Import(_ context.Context, d Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range d.Teams {
		s.st.teams[t.ID] = t
	}
	for _, p := range d.Players {
		s.st.players[p.ID] = p
	}
	for _, r := range d.Referees {
		s.st.referees[r.ID] = r
	}
	for _, f := range d.Fixtures {
		s.st.fixtures[f.ID] = f
	}
	return nil
}

// Write implements Store.
func (s *MemoryStore) Write(_ context.Context, p model.Payload) error {
	start := time.Now()
	s.mu.Lock()
	err := s.st.write(p)
	s.mu.Unlock()
	if err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return err
	}
	metrics.RecordRepositoryWrite(time.Since(start), p.Rows())
	return nil
}

func (st *state) write(p model.Payload) error {
	for _, sc := range p.Scores {
		f, ok := st.fixtures[sc.MatchID]
		if !ok {
			return fmt.Errorf("fixture %s: %w", sc.MatchID, ErrNotFound)
		}
		if f.Played {
			return fmt.Errorf("fixture %s: %w", sc.MatchID, ErrAlreadyPlayed)
		}
	}
	for _, sc := range p.Scores {
		f := st.fixtures[sc.MatchID]
		f.Played = true
		st.fixtures[f.ID] = f
		st.scores[f.ID] = sc
		st.serveBans(f)
	}
	for _, e := range p.Events {
		st.events[e.MatchID] = append(st.events[e.MatchID], e)
		if e.Type == model.EventYellowCard {
			st.yellows[e.PlayerID]++
		}
	}
	for _, l := range p.Lineups {
		st.lineups[l.MatchID] = append(st.lineups[l.MatchID], l)
	}
	for _, m := range p.Morale {
		pl, ok := st.players[m.PlayerID]
		if !ok {
			continue
		}
		pl.Morale = clampMorale(pl.Morale + m.Delta)
		st.players[pl.ID] = pl
	}
	st.bans = append(st.bans, p.Bans...)
	st.turnarounds = append(st.turnarounds, p.Turnarounds...)
	return nil
}

// serveBans counts f against every open suspension of its two teams in its
// competition.
func (st *state) serveBans(f model.Fixture) {
	kept := st.bans[:0]
	for _, b := range st.bans {
		if (b.TeamID == f.HomeID || b.TeamID == f.AwayID) && b.Competition == f.LeagueID {
			b.Length--
		}
		if b.Length > 0 {
			kept = append(kept, b)
		}
	}
	st.bans = kept
}

func clampMorale(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// SaveStandings implements Store.
func (s *MemoryStore) SaveStandings(_ context.Context, leagueID string, rows []model.TableRow) error {
	out := append([]model.TableRow(nil), rows...)
	standings.Sort(out)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.tables[leagueID] = out
	return nil
}

// AppendHistory implements Store.
func (s *MemoryStore) AppendHistory(_ context.Context, snap model.Snapshot) error {
	snap.Rows = append([]model.TableRow(nil), snap.Rows...)
	s.mu.Lock()
	defer s.mu.Unlock()
	hist := s.st.history[snap.LeagueID]
	for i, h := range hist {
		if h.Matchday == snap.Matchday {
			hist[i] = snap
			return nil
		}
	}
	hist = append(hist, snap)
	sort.Slice(hist, func(i, j int) bool { return hist[i].Matchday < hist[j].Matchday })
	s.st.history[snap.LeagueID] = hist
	return nil
}

// AddBans implements Store.
func (s *MemoryStore) AddBans(_ context.Context, bans []model.Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bans {
		if b.Length <= 0 {
			continue
		}
		s.st.bans = append(s.st.bans, b)
		if b.Type == model.BanYellowAccumulation {
			delete(s.st.yellows, b.PlayerID)
		}
	}
	return nil
}

// memoryCopy is a MemoryStore over a cloned state plus the payloads written
// to it since it was taken.
type memoryCopy struct {
	*MemoryStore
	id      string
	pending []model.Payload
	closed  atomic.Bool
}

func (c *memoryCopy) ID() string { return c.id }

// Write applies p to the copy and keeps it for CommitCopy.
func (c *memoryCopy) Write(ctx context.Context, p model.Payload) error {
	if c.closed.Load() {
		return ErrCopyClosed
	}
	if err := c.MemoryStore.Write(ctx, p); err != nil {
		return err
	}
	c.pending = append(c.pending, p)
	return nil
}

// BeginCopy implements Store.
func (s *MemoryStore) BeginCopy(_ context.Context) (Copy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &memoryCopy{
		MemoryStore: &MemoryStore{
			st:     s.st.clone(),
			copies: make(map[string]*memoryCopy),
			logger: s.logger,
		},
		id: uuid.NewString(),
	}
	s.copies[c.id] = c
	metrics.RecordRepositoryCopy("begin")
	return c, nil
}

func (s *MemoryStore) release(c Copy) (*memoryCopy, error) {
	mc, ok := c.(*memoryCopy)
	if !ok {
		return nil, ErrForeignCopy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.copies[mc.id]; !ok {
		if mc.closed.Load() {
			return nil, ErrCopyClosed
		}
		return nil, ErrForeignCopy
	}
	delete(s.copies, mc.id)
	mc.closed.Store(true)
	return mc, nil
}

// CommitCopy implements Store.
func (s *MemoryStore) CommitCopy(ctx context.Context, c Copy) error {
	mc, err := s.release(c)
	if err != nil {
		return err
	}
	metrics.RecordRepositoryCopy("commit")
	for _, p := range mc.pending {
		if err := s.Write(ctx, p); err != nil {
			return fmt.Errorf("commit copy %s: %w", mc.id, err)
		}
	}
	return nil
}

// DiscardCopy implements Store.
func (s *MemoryStore) DiscardCopy(_ context.Context, c Copy) error {
	if _, err := s.release(c); err != nil {
		return err
	}
	metrics.RecordRepositoryCopy("discard")
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
