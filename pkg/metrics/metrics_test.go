package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sim"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.matchesSimulated.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_sim_matches_simulated_total"], ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "matchday")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When matches and events are recorded", func() {
			before := testutil.ToFloat64(globalManager.matchesSimulated)
			RecordMatchSimulated(12 * time.Millisecond)
			RecordMatchSimulated(3 * time.Millisecond)
			goals := testutil.ToFloat64(globalManager.eventsDispatched.WithLabelValues("goal"))
			RecordEventDispatched("goal")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.matchesSimulated)-before, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.eventsDispatched.WithLabelValues("goal"))-goals, ShouldEqual, 1)
			})
		})

		Convey("When repository copies are opened and closed", func() {
			open := testutil.ToFloat64(globalManager.repositoryOpenCopies)
			RecordRepositoryCopy("begin")
			RecordRepositoryCopy("begin")
			RecordRepositoryCopy("discard")

			Convey("Then the open gauge tracks the balance", func() {
				So(testutil.ToFloat64(globalManager.repositoryOpenCopies)-open, ShouldEqual, 1)
				RecordRepositoryCopy("commit")
				So(testutil.ToFloat64(globalManager.repositoryOpenCopies), ShouldEqual, open)
			})
		})

		Convey("When a batch finishes", func() {
			RecordBatch(2*time.Second, 9, 420)

			Convey("Then the batch gauges hold the last values", func() {
				So(testutil.ToFloat64(globalManager.batchFixtures), ShouldEqual, 9)
				So(testutil.ToFloat64(globalManager.pooledRows), ShouldEqual, 420)
			})
		})

		Convey("When labels are empty or unusual", func() {
			So(func() {
				RecordHTTPRequest("", "", "200")
				RecordHTTPRequestDuration("/leagues/{id}/standings", "GET", "200", 0)
				RecordErrorByComponent("", "")
				RecordStoppage(2, 5)
				RecordMatchFailed("panic")
				RecordWorkerError("timeout")
				RecordNarrative("lead_change")
				RecordBan("red_card")
				RecordRepositoryWrite(time.Millisecond, 0)
				UpdateQueueSize(-1)
				UpdateQueueCapacity(0)
				UpdateWorkerActiveCount(0)
				UpdateFixturesInFlight(0)
				RecordWorkerProcessingLatency(0)
			}, ShouldNotPanic)
		})
	})
}

func TestConcurrency(t *testing.T) {
	Convey("Given many goroutines recording at once", t, func() {
		before := testutil.ToFloat64(globalManager.queueEnqueueTotal)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordEventDispatched("yellow_card")
				}
			}()
		}
		wg.Wait()

		Convey("Then no update is lost", func() {
			So(testutil.ToFloat64(globalManager.queueEnqueueTotal)-before, ShouldEqual, 1000)
		})
	})
}
