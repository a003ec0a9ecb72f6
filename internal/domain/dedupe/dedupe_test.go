package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/matchday/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a fixture is claimed", func() {
			seen := d.SeenAndRecord(ctx, "fx-1")

			Convey("Then the claim succeeds once", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "fx-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then releasing it allows a new claim", func() {
				d.Unrecord(ctx, "fx-1")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "fx-1"), ShouldBeFalse)
			})

			Convey("Then releasing an unknown id is harmless", func() {
				d.Unrecord(ctx, "fx-2")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When many goroutines race for the same fixtures", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			won := map[string]int{}
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 50; i++ {
						id := fmt.Sprintf("fx-%d", i)
						if !d.SeenAndRecord(ctx, id) {
							mu.Lock()
							won[id]++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then every fixture has exactly one owner", func() {
				So(len(won), ShouldEqual, 50)
				for _, n := range won {
					So(n, ShouldEqual, 1)
				}
				So(d.Size(), ShouldEqual, 50)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
		So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)

		Convey("Then claims beyond the cap are refused until one is released", func() {
			So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			d.Unrecord(ctx, "a")
			So(d.SeenAndRecord(ctx, "c"), ShouldBeFalse)
		})
	})
}
