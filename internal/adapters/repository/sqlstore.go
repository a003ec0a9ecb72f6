package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/standings"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
)

type fixtureRecord struct {
	ID        string `gorm:"primaryKey"`
	HomeID    string
	AwayID    string
	RefereeID string
	LeagueID  string    `gorm:"index:idx_fixture_matchday"`
	Matchday  int       `gorm:"index:idx_fixture_matchday"`
	Date      time.Time `gorm:"index"`
	Played    bool
	HomeGoals int
	AwayGoals int
}

type teamRecord struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	LeagueID       string `gorm:"index"`
	UserControlled bool
}

type playerRecord struct {
	ID                string `gorm:"primaryKey"`
	TeamID            string `gorm:"index"`
	Name              string
	Position          string
	SpecificPositions string
	CurrentAbility    float64
	Morale            float64
	Fitness           float64
	Sharpness         float64
	YellowCards       int
}

type refereeRecord struct {
	ID       string `gorm:"primaryKey"`
	Name     string
	Severity string
}

type eventRecord struct {
	ID          uint   `gorm:"primaryKey"`
	MatchID     string `gorm:"index"`
	TeamID      string
	Sequence    int
	Type        string
	Minute      string
	PlayerID    string
	AssisterID  string
	PlayerOffID string
}

type lineupRecord struct {
	ID            uint   `gorm:"primaryKey"`
	MatchID       string `gorm:"index"`
	TeamID        string
	PlayerID      string
	StartPosition *string
	EndPosition   *string
	Rating        float64
}

type tableRecord struct {
	LeagueID     string `gorm:"primaryKey"`
	TeamID       string `gorm:"primaryKey"`
	Played       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

type snapshotRecord struct {
	LeagueID string           `gorm:"primaryKey"`
	Matchday int              `gorm:"primaryKey"`
	Rows     []model.TableRow `gorm:"serializer:json"`
}

type banRecord struct {
	ID          uint   `gorm:"primaryKey"`
	PlayerID    string `gorm:"index"`
	TeamID      string `gorm:"index"`
	Type        string
	Remaining   int
	Competition string
}

type turnaroundRecord struct {
	ID      uint   `gorm:"primaryKey"`
	MatchID string `gorm:"index"`
	TeamID  string
	Kind    string
	Deficit int
}

func allRecords() []any {
	return []any{
		&fixtureRecord{}, &teamRecord{}, &playerRecord{}, &refereeRecord{},
		&eventRecord{}, &lineupRecord{}, &tableRecord{}, &snapshotRecord{},
		&banRecord{}, &turnaroundRecord{},
	}
}

// SQLStore keeps league state in a sqlite database through gorm. Copies are
// separate database files in the worker directory.
type SQLStore struct {
	db        *gorm.DB
	path      string
	workerDir string
	verbose   bool
	logger    logger.Logger

	mu     sync.Mutex
	copies map[string]*sqlCopy
}

// OpenSQLStore opens (and migrates) the sqlite database at path.
func OpenSQLStore(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s, err := openSQL(path, o)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).AutoMigrate(allRecords()...); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	if err := os.MkdirAll(s.workerDir, 0o755); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create worker dir: %w", err)
	}
	s.logger.Info(ctx, "sqlite store opened",
		logger.String("path", path),
		logger.String("worker_dir", s.workerDir),
	)
	return s, nil
}

func openSQL(path string, o options) (*SQLStore, error) {
	level := gormlogger.Silent
	if o.verbose {
		level = gormlogger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	sqlDB.SetMaxOpenConns(1)
	return &SQLStore{
		db:        db,
		path:      path,
		workerDir: o.workerDir,
		verbose:   o.verbose,
		logger:    o.logger,
		copies:    make(map[string]*sqlCopy),
	}, nil
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}

func (r fixtureRecord) model() model.Fixture {
	return model.Fixture{
		ID: r.ID, HomeID: r.HomeID, AwayID: r.AwayID, RefereeID: r.RefereeID,
		LeagueID: r.LeagueID, Date: r.Date, Matchday: r.Matchday, Played: r.Played,
	}
}

func fixtureModels(rs []fixtureRecord) []model.Fixture {
	out := make([]model.Fixture, len(rs))
	for i, r := range rs {
		out[i] = r.model()
	}
	return out
}

func (r playerRecord) model() model.Player {
	var codes []model.PositionCode
	for _, c := range strings.Split(r.SpecificPositions, ",") {
		if c != "" {
			codes = append(codes, model.PositionCode(c))
		}
	}
	return model.Player{
		ID: r.ID, TeamID: r.TeamID, Name: r.Name,
		Position:          model.Position(r.Position),
		SpecificPositions: codes,
		CurrentAbility:    r.CurrentAbility,
		Morale:            r.Morale,
		Fitness:           r.Fitness,
		Sharpness:         r.Sharpness,
	}
}

func (r tableRecord) model() model.TableRow {
	return model.TableRow{
		LeagueID: r.LeagueID, TeamID: r.TeamID, Played: r.Played,
		Wins: r.Wins, Draws: r.Draws, Losses: r.Losses,
		GoalsFor: r.GoalsFor, GoalsAgainst: r.GoalsAgainst, Points: r.Points,
	}
}

// FixturesBetween implements Reader.
func (s *SQLStore) FixturesBetween(ctx context.Context, from, to time.Time) ([]model.Fixture, error) {
	var rs []fixtureRecord
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from.UTC(), to.UTC()).
		Order("date, id").
		Find(&rs).Error
	if err != nil {
		return nil, fmt.Errorf("fixtures between: %w", err)
	}
	return fixtureModels(rs), nil
}

// Fixture implements Reader.
func (s *SQLStore) Fixture(ctx context.Context, id string) (model.Fixture, error) {
	var r fixtureRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return model.Fixture{}, notFound("fixture", id, err)
	}
	return r.model(), nil
}

// MatchdayFixtures implements Reader.
func (s *SQLStore) MatchdayFixtures(ctx context.Context, leagueID string, matchday int) ([]model.Fixture, error) {
	var rs []fixtureRecord
	err := s.db.WithContext(ctx).
		Where("league_id = ? AND matchday = ?", leagueID, matchday).
		Order("date, id").
		Find(&rs).Error
	if err != nil {
		return nil, fmt.Errorf("matchday fixtures: %w", err)
	}
	return fixtureModels(rs), nil
}

// Team implements Reader.
func (s *SQLStore) Team(ctx context.Context, id string) (model.Team, error) {
	var r teamRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return model.Team{}, notFound("team", id, err)
	}
	return model.Team{ID: r.ID, Name: r.Name, LeagueID: r.LeagueID, UserControlled: r.UserControlled}, nil
}

// Teams implements Reader.
func (s *SQLStore) Teams(ctx context.Context, leagueID string) ([]model.Team, error) {
	var rs []teamRecord
	if err := s.db.WithContext(ctx).Where("league_id = ?", leagueID).Order("id").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("teams: %w", err)
	}
	out := make([]model.Team, len(rs))
	for i, r := range rs {
		out[i] = model.Team{ID: r.ID, Name: r.Name, LeagueID: r.LeagueID, UserControlled: r.UserControlled}
	}
	return out, nil
}

// Players implements Reader.
func (s *SQLStore) Players(ctx context.Context, teamID string) ([]model.Player, error) {
	var rs []playerRecord
	if err := s.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	out := make([]model.Player, len(rs))
	for i, r := range rs {
		out[i] = r.model()
	}
	return out, nil
}

// Referee implements Reader.
func (s *SQLStore) Referee(ctx context.Context, id string) (model.Referee, error) {
	var r refereeRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return model.Referee{}, notFound("referee", id, err)
	}
	return model.Referee{ID: r.ID, Name: r.Name, Severity: model.Severity(r.Severity)}, nil
}

// Referees implements Reader.
func (s *SQLStore) Referees(ctx context.Context) ([]model.Referee, error) {
	var rs []refereeRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("referees: %w", err)
	}
	out := make([]model.Referee, len(rs))
	for i, r := range rs {
		out[i] = model.Referee{ID: r.ID, Name: r.Name, Severity: model.Severity(r.Severity)}
	}
	return out, nil
}

// Bans implements Reader.
func (s *SQLStore) Bans(ctx context.Context, teamID string) ([]model.Ban, error) {
	var rs []banRecord
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND remaining > 0", teamID).
		Order("id").
		Find(&rs).Error
	if err != nil {
		return nil, fmt.Errorf("bans: %w", err)
	}
	out := make([]model.Ban, len(rs))
	for i, r := range rs {
		out[i] = model.Ban{
			PlayerID: r.PlayerID, TeamID: r.TeamID, Type: model.BanType(r.Type),
			Length: r.Remaining, Competition: r.Competition,
		}
	}
	return out, nil
}

// YellowCards implements Reader.
func (s *SQLStore) YellowCards(ctx context.Context, playerID string) (int, error) {
	var r playerRecord
	err := s.db.WithContext(ctx).Select("yellow_cards").First(&r, "id = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("yellow cards: %w", err)
	}
	return r.YellowCards, nil
}

// Standings implements Reader.
func (s *SQLStore) Standings(ctx context.Context, leagueID string) ([]model.TableRow, error) {
	var rs []tableRecord
	if err := s.db.WithContext(ctx).Where("league_id = ?", leagueID).Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	out := make([]model.TableRow, len(rs))
	for i, r := range rs {
		out[i] = r.model()
	}
	standings.Sort(out)
	return out, nil
}

// History implements Reader.
func (s *SQLStore) History(ctx context.Context, leagueID string) ([]model.Snapshot, error) {
	var rs []snapshotRecord
	if err := s.db.WithContext(ctx).Where("league_id = ?", leagueID).Order("matchday").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	out := make([]model.Snapshot, len(rs))
	for i, r := range rs {
		out[i] = model.Snapshot{LeagueID: r.LeagueID, Matchday: r.Matchday, Rows: r.Rows}
	}
	return out, nil
}

// Events implements Reader.
func (s *SQLStore) Events(ctx context.Context, matchID string) ([]model.EventRow, error) {
	var rs []eventRecord
	if err := s.db.WithContext(ctx).Where("match_id = ?", matchID).Order("sequence").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	out := make([]model.EventRow, len(rs))
	for i, r := range rs {
		out[i] = model.EventRow{
			MatchID: r.MatchID, TeamID: r.TeamID, Sequence: r.Sequence,
			Type: model.EventType(r.Type), Minute: r.Minute, PlayerID: r.PlayerID,
			AssisterID: r.AssisterID, PlayerOffID: r.PlayerOffID,
		}
	}
	return out, nil
}

// Import implements Store.
func (s *SQLStore) Import(ctx context.Context, d Dataset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true})
		for _, t := range d.Teams {
			r := teamRecord{ID: t.ID, Name: t.Name, LeagueID: t.LeagueID, UserControlled: t.UserControlled}
			if err := upsert.Create(&r).Error; err != nil {
				return fmt.Errorf("import team %s: %w", t.ID, err)
			}
		}
		for _, p := range d.Players {
			codes := make([]string, len(p.SpecificPositions))
			for i, c := range p.SpecificPositions {
				codes[i] = string(c)
			}
			r := playerRecord{
				ID: p.ID, TeamID: p.TeamID, Name: p.Name, Position: string(p.Position),
				SpecificPositions: strings.Join(codes, ","),
				CurrentAbility:    p.CurrentAbility,
				Morale:            p.Morale,
				Fitness:           p.Fitness,
				Sharpness:         p.Sharpness,
			}
			if err := upsert.Create(&r).Error; err != nil {
				return fmt.Errorf("import player %s: %w", p.ID, err)
			}
		}
		for _, ref := range d.Referees {
			r := refereeRecord{ID: ref.ID, Name: ref.Name, Severity: string(ref.Severity)}
			if err := upsert.Create(&r).Error; err != nil {
				return fmt.Errorf("import referee %s: %w", ref.ID, err)
			}
		}
		for _, f := range d.Fixtures {
			r := fixtureRecord{
				ID: f.ID, HomeID: f.HomeID, AwayID: f.AwayID, RefereeID: f.RefereeID,
				LeagueID: f.LeagueID, Matchday: f.Matchday, Date: f.Date.UTC(), Played: f.Played,
			}
			if err := upsert.Create(&r).Error; err != nil {
				return fmt.Errorf("import fixture %s: %w", f.ID, err)
			}
		}
		return nil
	})
}

// Write implements Store.
func (s *SQLStore) Write(ctx context.Context, p model.Payload) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writePayload(tx, p)
	})
	if err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return err
	}
	metrics.RecordRepositoryWrite(time.Since(start), p.Rows())
	return nil
}

//nolint:gocognit,funlen // one transaction touching every table
func writePayload(tx *gorm.DB, p model.Payload) error {
	fixtures := make([]fixtureRecord, 0, len(p.Scores))
	for _, sc := range p.Scores {
		var f fixtureRecord
		if err := tx.First(&f, "id = ?", sc.MatchID).Error; err != nil {
			return notFound("fixture", sc.MatchID, err)
		}
		if f.Played {
			return fmt.Errorf("fixture %s: %w", f.ID, ErrAlreadyPlayed)
		}
		f.Played, f.HomeGoals, f.AwayGoals = true, sc.Home, sc.Away
		fixtures = append(fixtures, f)
	}
	for i := range fixtures {
		f := &fixtures[i]
		if err := tx.Save(f).Error; err != nil {
			return fmt.Errorf("mark %s played: %w", f.ID, err)
		}
		err := tx.Model(&banRecord{}).
			Where("team_id IN ? AND competition = ? AND remaining > 0", []string{f.HomeID, f.AwayID}, f.LeagueID).
			Update("remaining", gorm.Expr("remaining - 1")).Error
		if err != nil {
			return fmt.Errorf("serve bans for %s: %w", f.ID, err)
		}
	}
	if err := tx.Where("remaining <= 0").Delete(&banRecord{}).Error; err != nil {
		return fmt.Errorf("expire bans: %w", err)
	}

	if len(p.Events) > 0 {
		rs := make([]eventRecord, len(p.Events))
		for i, e := range p.Events {
			rs[i] = eventRecord{
				MatchID: e.MatchID, TeamID: e.TeamID, Sequence: e.Sequence, Type: string(e.Type),
				Minute: e.Minute, PlayerID: e.PlayerID, AssisterID: e.AssisterID, PlayerOffID: e.PlayerOffID,
			}
			if e.Type == model.EventYellowCard {
				err := tx.Model(&playerRecord{}).Where("id = ?", e.PlayerID).
					Update("yellow_cards", gorm.Expr("yellow_cards + 1")).Error
				if err != nil {
					return fmt.Errorf("count booking: %w", err)
				}
			}
		}
		if err := tx.CreateInBatches(rs, 200).Error; err != nil {
			return fmt.Errorf("insert events: %w", err)
		}
	}

	if len(p.Lineups) > 0 {
		rs := make([]lineupRecord, len(p.Lineups))
		for i, l := range p.Lineups {
			rs[i] = lineupRecord{
				MatchID: l.MatchID, TeamID: l.TeamID, PlayerID: l.PlayerID,
				StartPosition: codePtr(l.StartPosition), EndPosition: codePtr(l.EndPosition),
				Rating: l.Rating,
			}
		}
		if err := tx.CreateInBatches(rs, 200).Error; err != nil {
			return fmt.Errorf("insert lineups: %w", err)
		}
	}

	for _, m := range p.Morale {
		err := tx.Model(&playerRecord{}).Where("id = ?", m.PlayerID).
			Update("morale", gorm.Expr("MIN(100, MAX(0, morale + ?))", m.Delta)).Error
		if err != nil {
			return fmt.Errorf("adjust morale: %w", err)
		}
	}

	if err := insertBans(tx, p.Bans); err != nil {
		return err
	}

	if len(p.Turnarounds) > 0 {
		rs := make([]turnaroundRecord, len(p.Turnarounds))
		for i, t := range p.Turnarounds {
			rs[i] = turnaroundRecord{MatchID: t.MatchID, TeamID: t.TeamID, Kind: string(t.Kind), Deficit: t.Deficit}
		}
		if err := tx.Create(&rs).Error; err != nil {
			return fmt.Errorf("insert turnarounds: %w", err)
		}
	}
	return nil
}

func codePtr(c *model.PositionCode) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

func insertBans(tx *gorm.DB, bans []model.Ban) error {
	for _, b := range bans {
		if b.Length <= 0 {
			continue
		}
		r := banRecord{
			PlayerID: b.PlayerID, TeamID: b.TeamID, Type: string(b.Type),
			Remaining: b.Length, Competition: b.Competition,
		}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("insert ban: %w", err)
		}
		if b.Type == model.BanYellowAccumulation {
			err := tx.Model(&playerRecord{}).Where("id = ?", b.PlayerID).Update("yellow_cards", 0).Error
			if err != nil {
				return fmt.Errorf("reset bookings: %w", err)
			}
		}
	}
	return nil
}

// SaveStandings implements Store.
func (s *SQLStore) SaveStandings(ctx context.Context, leagueID string, rows []model.TableRow) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("league_id = ?", leagueID).Delete(&tableRecord{}).Error; err != nil {
			return fmt.Errorf("clear standings: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		rs := make([]tableRecord, len(rows))
		for i, r := range rows {
			rs[i] = tableRecord{
				LeagueID: leagueID, TeamID: r.TeamID, Played: r.Played,
				Wins: r.Wins, Draws: r.Draws, Losses: r.Losses,
				GoalsFor: r.GoalsFor, GoalsAgainst: r.GoalsAgainst, Points: r.Points,
			}
		}
		if err := tx.Create(&rs).Error; err != nil {
			return fmt.Errorf("save standings: %w", err)
		}
		return nil
	})
}

// AppendHistory implements Store.
func (s *SQLStore) AppendHistory(ctx context.Context, snap model.Snapshot) error {
	r := snapshotRecord{LeagueID: snap.LeagueID, Matchday: snap.Matchday, Rows: snap.Rows}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&r).Error
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// AddBans implements Store.
func (s *SQLStore) AddBans(ctx context.Context, bans []model.Ban) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertBans(tx, bans)
	})
}

// sqlCopy is a SQLStore over a private database file plus the payloads
// written to it since it was taken.
type sqlCopy struct {
	*SQLStore
	id      string
	pending []model.Payload
	closed  atomic.Bool
}

func (c *sqlCopy) ID() string { return c.id }

// Write applies p to the copy file and keeps it for CommitCopy.
func (c *sqlCopy) Write(ctx context.Context, p model.Payload) error {
	if c.closed.Load() {
		return ErrCopyClosed
	}
	if err := c.SQLStore.Write(ctx, p); err != nil {
		return err
	}
	c.pending = append(c.pending, p)
	return nil
}

// BeginCopy snapshots the database into a new file in the worker directory
// and opens it.
func (s *SQLStore) BeginCopy(ctx context.Context) (Copy, error) {
	id := uuid.NewString()
	path := filepath.Join(s.workerDir, "copy-"+id+".db")
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		return nil, fmt.Errorf("snapshot into %s: %w", path, err)
	}
	local, err := openSQL(path, options{logger: s.logger, workerDir: s.workerDir, verbose: s.verbose})
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	c := &sqlCopy{SQLStore: local, id: id}
	s.mu.Lock()
	s.copies[id] = c
	s.mu.Unlock()
	metrics.RecordRepositoryCopy("begin")
	s.logger.Debug(ctx, "copy opened", logger.String("copy_id", id), logger.String("path", path))
	return c, nil
}

func (s *SQLStore) release(ctx context.Context, c Copy) (*sqlCopy, error) {
	sc, ok := c.(*sqlCopy)
	if !ok {
		return nil, ErrForeignCopy
	}
	s.mu.Lock()
	if _, ok := s.copies[sc.id]; !ok {
		s.mu.Unlock()
		if sc.closed.Load() {
			return nil, ErrCopyClosed
		}
		return nil, ErrForeignCopy
	}
	delete(s.copies, sc.id)
	sc.closed.Store(true)
	s.mu.Unlock()

	if err := sc.SQLStore.Close(); err != nil {
		s.logger.Warn(ctx, "closing copy failed", logger.String("copy_id", sc.id), logger.Error(err))
	}
	if err := os.Remove(sc.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn(ctx, "removing copy failed", logger.String("path", sc.path), logger.Error(err))
	}
	return sc, nil
}

// CommitCopy implements Store.
func (s *SQLStore) CommitCopy(ctx context.Context, c Copy) error {
	sc, err := s.release(ctx, c)
	if err != nil {
		return err
	}
	metrics.RecordRepositoryCopy("commit")
	for _, p := range sc.pending {
		if err := s.Write(ctx, p); err != nil {
			return fmt.Errorf("commit copy %s: %w", sc.id, err)
		}
	}
	return nil
}

// DiscardCopy implements Store.
func (s *SQLStore) DiscardCopy(ctx context.Context, c Copy) error {
	if _, err := s.release(ctx, c); err != nil {
		return err
	}
	metrics.RecordRepositoryCopy("discard")
	return nil
}

// Close releases the database handle. Open copies are discarded.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	open := make([]*sqlCopy, 0, len(s.copies))
	for _, c := range s.copies {
		open = append(open, c)
	}
	s.mu.Unlock()
	for _, c := range open {
		_ = s.DiscardCopy(context.Background(), c)
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
