package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	service "github.com/okian/matchday/internal/app"
	"github.com/okian/matchday/internal/config"
	"github.com/okian/matchday/internal/seed"
	"github.com/okian/matchday/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given configuration loaded from the environment", t, func() {
		t.Setenv("MATCHDAY_WORKER_COUNT", "2")
		t.Setenv("MATCHDAY_RANDOM_SEED", "7")
		t.Setenv("MATCHDAY_DEMO_LEAGUE", "false")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the service is built from it", func() {
			svc := service.New(serviceOptions(cfg, logger.Nop())...)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the worker count is applied and no league is seeded", func() {
				convey.So(svc.GetStats()["workerCount"], convey.ShouldEqual, 2)
				table, err := svc.Standings(context.Background(), "demo")
				convey.So(err, convey.ShouldBeNil)
				convey.So(table, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestServer(t *testing.T) {
	convey.Convey("Given a server over a demo league", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.WorkerCount = 2
		cfg.RandomSeed = 3

		svc := service.New(serviceOptions(cfg, logger.Nop())...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := newServer(ctx, ":0", svc)
		convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
		h := srv.Handler

		convey.Convey("When the health and docs routes are requested", func() {
			for _, path := range []string{"/healthz", "/metrics", "/api-docs", "/openapi.yaml", "/stats"} {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("When the first matchday is posted as a batch", func() {
			from := seed.DefaultStart
			body := `{"from":"` + from.Format(time.RFC3339) + `","to":"` + from.Add(time.Hour).Format(time.RFC3339) + `"}`
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(body)))

			convey.Convey("Then every first-round fixture is simulated", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var out struct {
					Simulated []string `json:"simulated"`
					Snapshots int      `json:"snapshots"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &out), convey.ShouldBeNil)
				convey.So(len(out.Simulated), convey.ShouldEqual, seed.DefaultConfig(from).Teams/2)
				convey.So(out.Snapshots, convey.ShouldEqual, 1)
			})

			convey.Convey("Then the standings list every team", func() {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leagues/demo/standings", http.NoBody))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var rows []map[string]any
				convey.So(json.Unmarshal(rec.Body.Bytes(), &rows), convey.ShouldBeNil)
				convey.So(len(rows), convey.ShouldEqual, seed.DefaultConfig(from).Teams)
			})
		})

		convey.Convey("When service gauges are published", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then the updater returns", func() {
			convey.So(func() { startServiceMetricsUpdater(ctx, service.New()) }, convey.ShouldNotPanic)
		})
	})
}
