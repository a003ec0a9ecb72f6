package batch

import (
	"testing"

	"github.com/okian/matchday/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestChunk(t *testing.T) {
	Convey("Given seven fixtures", t, func() {
		fs := make([]model.Fixture, 7)
		for i := range fs {
			fs[i].ID = string(rune('a' + i))
		}

		Convey("When split into chunks of three", func() {
			cs := chunk(fs, 3)

			Convey("Then the last chunk holds the remainder", func() {
				So(len(cs), ShouldEqual, 3)
				So(len(cs[0]), ShouldEqual, 3)
				So(len(cs[2]), ShouldEqual, 1)
				So(cs[2][0].ID, ShouldEqual, "g")
			})

			Convey("Then appending to a chunk does not clobber the next", func() {
				_ = append(cs[0], model.Fixture{ID: "x"})
				So(cs[1][0].ID, ShouldEqual, "d")
			})
		})

		Convey("When the chunk size exceeds the input", func() {
			So(len(chunk(fs, 10)), ShouldEqual, 1)
			So(chunk(nil, 3), ShouldBeEmpty)
		})
	})
}

func TestSeedFor(t *testing.T) {
	Convey("Fixture seeds depend on the base seed and the fixture id only", t, func() {
		So(seedFor(1, "f1"), ShouldEqual, seedFor(1, "f1"))
		So(seedFor(1, "f1"), ShouldNotEqual, seedFor(1, "f2"))
		So(seedFor(1, "f1"), ShouldNotEqual, seedFor(2, "f1"))
	})
}
