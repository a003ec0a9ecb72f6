package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/matchday/internal/adapters/mq/queue"
	worker "github.com/okian/matchday/internal/adapters/mq/worker"
	"github.com/okian/matchday/internal/adapters/repository"
	model "github.com/okian/matchday/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

// countingCopier wraps a store and records copy lifecycles.
type countingCopier struct {
	*repository.MemoryStore
	mu        sync.Mutex
	begun     int
	discarded int
	failBegin bool
}

func (c *countingCopier) BeginCopy(ctx context.Context) (repository.Copy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failBegin {
		return nil, errors.New("disk full")
	}
	c.begun++
	return c.MemoryStore.BeginCopy(ctx)
}

func (c *countingCopier) DiscardCopy(ctx context.Context, cp repository.Copy) error {
	c.mu.Lock()
	c.discarded++
	c.mu.Unlock()
	return c.MemoryStore.DiscardCopy(ctx, cp)
}

func (c *countingCopier) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.begun, c.discarded
}

func scoreOnly(_ context.Context, _ repository.Reader, t queue.Task) (model.Payload, error) {
	switch t.Fixture.ID {
	case "boom":
		panic("lineup exploded")
	case "bad":
		return model.Payload{}, errors.New("no referee")
	}
	return model.Payload{Scores: []model.ScoreRow{{MatchID: t.Fixture.ID, Home: 1}}}, nil
}

func fill(q *queue.InMemoryQueue, ids ...string) {
	for _, id := range ids {
		q.Enqueue(context.Background(), queue.Task{Fixture: model.Fixture{ID: id}})
	}
}

func drain(results chan worker.Outcome) map[string]worker.Outcome {
	out := map[string]worker.Outcome{}
	for {
		select {
		case o := <-results:
			out[o.Task.Fixture.ID] = o
		default:
			return out
		}
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a closed queue", t, func() {
		ctx := context.Background()
		copier := &countingCopier{MemoryStore: repository.NewMemoryStore()}
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		fill(q, "fx1", "bad", "boom", "fx2")
		_ = q.Close()
		results := make(chan worker.Outcome, 10)
		w := worker.NewInMemoryWorker(q, copier, worker.SimulatorFunc(scoreOnly), results, worker.WithName("w1"))

		convey.Convey("When it runs to completion", func() {
			err := w.Run(ctx)
			got := drain(results)

			convey.Convey("Then every task yields an outcome", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(got), convey.ShouldEqual, 4)
				convey.So(got["fx1"].Err, convey.ShouldBeNil)
				convey.So(got["fx1"].Payload.Scores[0].MatchID, convey.ShouldEqual, "fx1")
				convey.So(got["fx1"].Worker, convey.ShouldEqual, "w1")
			})

			convey.Convey("Then failures and panics are isolated to their fixture", func() {
				convey.So(got["bad"].Err, convey.ShouldNotBeNil)
				convey.So(errors.Is(got["boom"].Err, worker.ErrPanic), convey.ShouldBeTrue)
				convey.So(got["boom"].Payload.Rows(), convey.ShouldEqual, 0)
				convey.So(got["fx2"].Err, convey.ShouldBeNil)
			})

			convey.Convey("Then its copy was opened once and discarded", func() {
				begun, discarded := copier.counts()
				convey.So(begun, convey.ShouldEqual, 1)
				convey.So(discarded, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		copier := &countingCopier{MemoryStore: repository.NewMemoryStore()}
		q := queue.NewInMemoryQueue()
		results := make(chan worker.Outcome, 1)
		w := worker.NewInMemoryWorker(q, copier, worker.SimulatorFunc(scoreOnly), results)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		time.Sleep(20 * time.Millisecond)
		cancel()

		convey.Convey("Then it stops and still discards its copy", func() {
			select {
			case err := <-done:
				convey.So(err, convey.ShouldBeNil)
			case <-time.After(2 * time.Second):
				convey.So("worker did not stop", convey.ShouldBeEmpty)
			}
			_, discarded := copier.counts()
			convey.So(discarded, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given a worker that is shut down", t, func() {
		copier := &countingCopier{MemoryStore: repository.NewMemoryStore()}
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, copier, worker.SimulatorFunc(scoreOnly), make(chan worker.Outcome, 1))
		go func() { _ = w.Run(context.Background()) }()
		time.Sleep(20 * time.Millisecond)

		convey.Convey("Then shutdown returns once it has stopped", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a store that cannot be copied", t, func() {
		copier := &countingCopier{MemoryStore: repository.NewMemoryStore(), failBegin: true}
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, copier, worker.SimulatorFunc(scoreOnly), make(chan worker.Outcome, 1))

		convey.Convey("Then the worker fails immediately", func() {
			convey.So(w.Run(context.Background()), convey.ShouldNotBeNil)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		ctx := context.Background()
		copier := &countingCopier{MemoryStore: repository.NewMemoryStore()}
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		results := make(chan worker.Outcome, 100)
		pool := worker.NewPool(4, q, copier, worker.SimulatorFunc(scoreOnly), results)

		convey.Convey("When fifty fixtures are processed", func() {
			for i := 0; i < 50; i++ {
				fill(q, fmt.Sprintf("fx%d", i))
			}
			_ = q.Close()
			err := pool.Run(ctx)
			got := drain(results)

			convey.Convey("Then each fixture is simulated exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool.Size(), convey.ShouldEqual, 4)
				convey.So(len(got), convey.ShouldEqual, 50)
			})

			convey.Convey("Then every worker opened and released one copy", func() {
				begun, discarded := copier.counts()
				convey.So(begun, convey.ShouldEqual, 4)
				convey.So(discarded, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When a pool is created with no workers", func() {
			convey.So(worker.NewPool(0, q, copier, worker.SimulatorFunc(scoreOnly), results).Size(), convey.ShouldEqual, 1)
		})
	})
}
