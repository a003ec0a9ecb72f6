package batch

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/matchday/internal/adapters/mq/worker"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/standings"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
)

// settle applies the league-level consequences of persisted outcomes. It
// runs once per matchday wave, after that wave's pooled payload has been written.
func (o *Orchestrator) settle(ctx context.Context, done []worker.Outcome, res *Result) error {
	if len(done) == 0 {
		return nil
	}
	bans, err := o.accumulationBans(ctx, res.Payload.YellowChecks)
	if err != nil {
		return err
	}
	if len(bans) > 0 {
		if err := o.store.AddBans(ctx, bans); err != nil {
			return fmt.Errorf("add accumulation bans: %w", err)
		}
		res.Bans = bans
	}
	for _, b := range res.Payload.Bans {
		metrics.RecordBan(string(b.Type))
	}
	for _, b := range bans {
		metrics.RecordBan(string(b.Type))
	}

	if err := o.updateTables(ctx, done, res); err != nil {
		return err
	}
	o.notify(ctx, res)
	return nil
}

// accumulationBans issues a one-match ban to every booked player whose tally
// reached the threshold.
func (o *Orchestrator) accumulationBans(ctx context.Context, checks []model.YellowCheck) ([]model.Ban, error) {
	seen := make(map[string]bool, len(checks))
	var out []model.Ban
	for _, c := range checks {
		if seen[c.PlayerID] {
			continue
		}
		seen[c.PlayerID] = true
		n, err := o.store.YellowCards(ctx, c.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("yellow cards for %s: %w", c.PlayerID, err)
		}
		if n >= o.yellowThreshold {
			out = append(out, model.Ban{
				PlayerID:    c.PlayerID,
				TeamID:      c.TeamID,
				Type:        model.BanYellowAccumulation,
				Length:      accumulationBanLength,
				Competition: c.LeagueID,
			})
		}
	}
	return out, nil
}

// updateTables recomputes each affected league table once, walking the batch's
// matchdays in order so snapshots and narratives see the table as it stood
// after each one.
func (o *Orchestrator) updateTables(ctx context.Context, done []worker.Outcome, res *Result) error {
	byLeague := make(map[string]map[int][]model.TableDelta)
	for _, out := range done {
		f := out.Task.Fixture
		if byLeague[f.LeagueID] == nil {
			byLeague[f.LeagueID] = make(map[int][]model.TableDelta)
		}
		byLeague[f.LeagueID][f.Matchday] = append(byLeague[f.LeagueID][f.Matchday], out.Payload.Table...)
	}
	leagues := make([]string, 0, len(byLeague))
	for id := range byLeague {
		leagues = append(leagues, id)
	}
	sort.Strings(leagues)

	res.Standings = make(map[string][]model.TableRow, len(leagues))
	for _, leagueID := range leagues {
		table, err := o.store.Standings(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("standings %s: %w", leagueID, err)
		}
		matchdays := make([]int, 0, len(byLeague[leagueID]))
		for md := range byLeague[leagueID] {
			matchdays = append(matchdays, md)
		}
		sort.Ints(matchdays)

		for _, md := range matchdays {
			next := standings.Apply(table, byLeague[leagueID][md])
			complete, err := o.matchdayComplete(ctx, leagueID, md)
			if err != nil {
				return err
			}
			if complete {
				snap := model.Snapshot{LeagueID: leagueID, Matchday: md, Rows: next}
				if err := o.store.AppendHistory(ctx, snap); err != nil {
					return fmt.Errorf("history %s/%d: %w", leagueID, md, err)
				}
				res.Snapshots = append(res.Snapshots, snap)
			}
			if md >= o.narrativeMatchday {
				for _, n := range standings.Narratives(leagueID, md, table, next, o.relegationSlots) {
					metrics.RecordNarrative(string(n.Kind))
					res.Narratives = append(res.Narratives, n)
				}
			}
			table = next
		}

		if err := o.store.SaveStandings(ctx, leagueID, table); err != nil {
			return fmt.Errorf("save standings %s: %w", leagueID, err)
		}
		res.Standings[leagueID] = table
	}
	return nil
}

func (o *Orchestrator) matchdayComplete(ctx context.Context, leagueID string, matchday int) (bool, error) {
	fixtures, err := o.store.MatchdayFixtures(ctx, leagueID, matchday)
	if err != nil {
		return false, fmt.Errorf("matchday %s/%d: %w", leagueID, matchday, err)
	}
	for _, f := range fixtures {
		if !f.Played {
			return false, nil
		}
	}
	return len(fixtures) > 0, nil
}

// notify forwards bans and morale changes of user-controlled teams and every
// narrative. Notifier errors are logged and never fail the batch.
func (o *Orchestrator) notify(ctx context.Context, res *Result) {
	managed := make(map[string]bool)
	isManaged := func(teamID string) bool {
		v, ok := managed[teamID]
		if !ok {
			t, err := o.store.Team(ctx, teamID)
			v = err == nil && t.UserControlled
			managed[teamID] = v
		}
		return v
	}
	send := func(n Notification) {
		if err := o.notifier.Notify(ctx, n); err != nil {
			o.logger.Warn(ctx, "notification failed",
				logger.String("kind", string(n.Kind)),
				logger.String("team_id", n.TeamID),
				logger.Error(err),
			)
		}
	}

	bans := append(append([]model.Ban(nil), res.Payload.Bans...), res.Bans...)
	for i := range bans {
		if isManaged(bans[i].TeamID) {
			send(Notification{Kind: NotifyBan, TeamID: bans[i].TeamID, Ban: &bans[i]})
		}
	}
	for i := range res.Payload.Morale {
		m := &res.Payload.Morale[i]
		if isManaged(m.TeamID) {
			send(Notification{Kind: NotifyMorale, TeamID: m.TeamID, Morale: m})
		}
	}
	for i := range res.Narratives {
		n := &res.Narratives[i]
		send(Notification{Kind: NotifyNarrative, TeamID: n.TeamID, Narrative: n})
	}
}
