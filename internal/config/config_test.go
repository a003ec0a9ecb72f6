package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/matchday/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 0)
			convey.So(cfg.DatabasePath, convey.ShouldBeEmpty)
			convey.So(cfg.MaxSubstitutions, convey.ShouldEqual, 5)
			convey.So(cfg.YellowCardThreshold, convey.ShouldEqual, 5)
			convey.So(cfg.NarrativeMatchday, convey.ShouldEqual, 5)
			convey.So(cfg.RelegationSlots, convey.ShouldEqual, 3)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the clock pace converts to a duration", func() {
			cfg.ClockPaceMS = 250
			convey.So(cfg.ClockPace(), convey.ShouldEqual, 250*time.Millisecond)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New(context.Background())

		cases := map[string]func(*config.Config){
			"empty addr":               func(c *config.Config) { c.Addr = "" },
			"negative workers":         func(c *config.Config) { c.WorkerCount = -1 },
			"injury probability above": func(c *config.Config) { c.InjuryProbability = 1.5 },
			"zero yellow threshold":    func(c *config.Config) { c.YellowCardThreshold = 0 },
			"zero narrative matchday":  func(c *config.Config) { c.NarrativeMatchday = 0 },
			"negative relegation":      func(c *config.Config) { c.RelegationSlots = -2 },
			"negative pace":            func(c *config.Config) { c.ClockPaceMS = -1 },
		}
		for name, mutate := range cases {
			convey.Convey("When it has "+name, func() {
				mutate(cfg)

				convey.Convey("Then validation fails", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
