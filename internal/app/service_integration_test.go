package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/matchday/internal/adapters/repository"
	service "github.com/okian/matchday/internal/app"
	"github.com/okian/matchday/internal/batch"
	"github.com/okian/matchday/internal/seed"
	. "github.com/smartystreets/goconvey/convey"
)

var kickoff = time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC)

func TestServiceIntegration(t *testing.T) {
	demo := seed.DefaultConfig(kickoff)
	demo.Teams = 6
	demo.Referees = 3

	Convey("Given a sqlite-backed service with a demo league", t, func() {
		dir := t.TempDir()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithSeed(99),
			service.WithDatabasePath(filepath.Join(dir, "league.db"), filepath.Join(dir, "workers")),
			service.WithDemoLeague(demo),
		)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the first matchday is run as a batch", func() {
			res, err := svc.RunBatch(ctx, kickoff, kickoff.Add(time.Hour))
			So(err, ShouldBeNil)

			Convey("Then its fixtures are played and the table is stored", func() {
				So(len(res.Simulated), ShouldEqual, 3)
				So(res.Failed, ShouldBeEmpty)
				table, err := svc.Standings(ctx, demo.LeagueID)
				So(err, ShouldBeNil)
				So(len(table), ShouldEqual, 6)
				hist, err := svc.History(ctx, demo.LeagueID)
				So(err, ShouldBeNil)
				So(len(hist), ShouldEqual, 1)
				So(svc.GetStats()["batches"], ShouldEqual, 1)
			})

			Convey("Then a played match exposes its events", func() {
				f, err := svc.Fixture(ctx, res.Simulated[0])
				So(err, ShouldBeNil)
				So(f.Played, ShouldBeTrue)
				_, err = svc.Events(ctx, f.ID)
				So(err, ShouldBeNil)
			})

			Convey("Then replaying a played fixture is refused", func() {
				_, err := svc.SimulateFixture(ctx, res.Simulated[0])
				So(errors.Is(err, batch.ErrFixturePlayed), ShouldBeTrue)
			})
		})

		Convey("When the service restarts on the same database", func() {
			_, err := svc.RunBatch(ctx, kickoff, kickoff.Add(time.Hour))
			So(err, ShouldBeNil)
			svc.Stop()

			again := service.New(
				service.WithDatabasePath(filepath.Join(dir, "league.db"), filepath.Join(dir, "workers")),
				service.WithDemoLeague(demo),
			)
			So(again.Start(ctx), ShouldBeNil)
			defer again.Stop()

			Convey("Then the league is not seeded twice and results survive", func() {
				table, err := again.Standings(ctx, demo.LeagueID)
				So(err, ShouldBeNil)
				So(len(table), ShouldEqual, 6)
				So(table[0].Played, ShouldEqual, 1)
			})
		})
	})
}

func TestServiceSimulateFixture(t *testing.T) {
	demo := seed.DefaultConfig(kickoff)
	demo.Teams = 4
	demo.Referees = 2

	Convey("Given a service over a memory store", t, func() {
		store := repository.NewMemoryStore()
		svc := service.New(service.WithStore(store), service.WithDemoLeague(demo), service.WithSeed(5))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		fixtures, err := store.FixturesBetween(ctx, kickoff, kickoff.Add(time.Hour))
		So(err, ShouldBeNil)
		So(len(fixtures), ShouldEqual, 2)

		Convey("When one fixture is simulated on its own", func() {
			played, err := svc.SimulateFixture(ctx, fixtures[0].ID)
			So(err, ShouldBeNil)

			Convey("Then it is committed and the other is untouched", func() {
				So(played.FixtureID, ShouldEqual, fixtures[0].ID)
				f, _ := store.Fixture(ctx, fixtures[0].ID)
				So(f.Played, ShouldBeTrue)
				f, _ = store.Fixture(ctx, fixtures[1].ID)
				So(f.Played, ShouldBeFalse)
				So(svc.GetStats()["fixturesSimulated"], ShouldEqual, 1)
			})

			Convey("Then the next batch only plays what is left", func() {
				res, err := svc.RunBatch(ctx, kickoff, kickoff.Add(time.Hour))
				So(err, ShouldBeNil)
				So(res.Simulated, ShouldResemble, []string{fixtures[1].ID})
				So(len(res.Snapshots), ShouldEqual, 1)
			})
		})

		Convey("When an unknown fixture is simulated", func() {
			_, err := svc.SimulateFixture(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
