// Package clock drives a match second by second and dispatches each side's
// pending events exactly once, in simulated-time order.
package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/matchday/internal/domain/model"
)

// State is the phase the match clock is in.
type State int32

// Clock states.
const (
	FirstHalf State = iota
	HalfTimeBreak
	SecondHalf
	FullTimeBreak
	Finished
)

func (s State) String() string {
	switch s {
	case FirstHalf:
		return "first_half"
	case HalfTimeBreak:
		return "half_time"
	case SecondHalf:
		return "second_half"
	case FullTimeBreak:
		return "full_time"
	default:
		return "finished"
	}
}

// Handler applies a dispatched event and returns it with any fields it filled
// in. It runs on the clock goroutine and may insert new events later than
// the event's own time into either timeline.
type Handler func(e model.Event) model.Event

// Summary describes a completed run.
type Summary struct {
	// Stoppage holds the minutes added to the first and second half.
	Stoppage   [2]int
	Dispatched int
	Skipped    int
}

// Option applies a configuration option to the Clock.
type Option func(*Clock)

// WithPace sets the real time spent per simulated second. Zero runs flat out.
func WithPace(d time.Duration) Option {
	return func(c *Clock) {
		if d >= 0 {
			c.pace = d
		}
	}
}

// WithBreak sets the real time the clock rests at half time and full time.
func WithBreak(d time.Duration) Option {
	return func(c *Clock) {
		if d >= 0 {
			c.breakPause = d
		}
	}
}

// WithStateHook registers a callback fired on every state change.
func WithStateHook(fn func(State, model.EventTime)) Option {
	return func(c *Clock) {
		c.onState = fn
	}
}

// WithFinish registers the finalization callback, fired exactly once.
func WithFinish(fn func(Summary)) Option {
	return func(c *Clock) {
		c.onFinish = fn
	}
}

// Clock is the per-match state machine. Only the clock goroutine touches the
// timelines while it runs; callers read results after Wait returns.
type Clock struct {
	timelines  [2]*model.Timeline
	handler    Handler
	pace       time.Duration
	breakPause time.Duration
	onState    func(State, model.EventTime)
	onFinish   func(Summary)

	state      atomic.Int32
	now        model.EventTime
	dispatched [2]map[model.EventTime]bool
	summary    Summary

	startOnce  sync.Once
	finishOnce sync.Once
	done       chan struct{}
}

// New creates a clock over both timelines.
func New(home, away *model.Timeline, handler Handler, opts ...Option) *Clock {
	c := &Clock{
		timelines:  [2]*model.Timeline{home, away},
		handler:    handler,
		dispatched: [2]map[model.EventTime]bool{{}, {}},
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current phase. Safe for concurrent use.
func (c *Clock) State() State {
	return State(c.state.Load())
}

// Start launches the clock goroutine. Further calls are no-ops.
func (c *Clock) Start() {
	c.startOnce.Do(func() {
		go c.loop()
	})
}

// Wait blocks until the match is finished.
func (c *Clock) Wait() Summary {
	<-c.done
	return c.summary
}

// Run starts the clock and waits for it.
func (c *Clock) Run() Summary {
	c.Start()
	return c.Wait()
}

func (c *Clock) loop() {
	defer close(c.done)

	c.setState(FirstHalf)
	c.runHalf(0, model.HalfTime)
	c.summary.Stoppage[0] = c.runStoppage(model.HalfTime)

	c.setState(HalfTimeBreak)
	c.rest()

	c.setState(SecondHalf)
	c.runHalf(model.HalfTime, model.FullTime)
	c.summary.Stoppage[1] = c.runStoppage(model.FullTime)

	c.setState(FullTimeBreak)
	c.rest()

	c.finish()
}

// runHalf ticks regular time from minute from up to (not including) minute to.
func (c *Clock) runHalf(from, to int) {
	for c.now = (model.EventTime{Minute: from}); c.now.Minute < to; c.now = c.now.Advance(1) {
		c.tick()
	}
}

// runStoppage ticks the stoppage window after base and returns its length.
// The window is re-evaluated every tick so events inserted during it are honoured.
func (c *Clock) runStoppage(base int) int {
	stoppage := Stoppage(c.timelines[0], c.timelines[1], base)
	for c.now = (model.EventTime{Minute: base, Extra: true}); c.now.Minute < base+stoppage; c.now = c.now.Advance(1) {
		c.tick()
		if need := Stoppage(c.timelines[0], c.timelines[1], base); need > stoppage {
			stoppage = need
		}
	}
	return stoppage
}

// tick dispatches whatever is due at the current instant, home side first.
func (c *Clock) tick() {
	for side := range c.timelines {
		tl := c.timelines[side]
		for i := range tl.Events {
			if tl.Events[i].Time != c.now {
				continue
			}
			c.dispatch(side, i)
			break
		}
	}
	if c.pace > 0 {
		time.Sleep(c.pace)
	}
}

func (c *Clock) dispatch(side, idx int) {
	tl := c.timelines[side]
	e := tl.Events[idx]
	if c.dispatched[side][e.Time] {
		return
	}
	c.dispatched[side][e.Time] = true
	if e.Type == model.EventSentinel {
		return
	}

	out := c.handler(e)
	out.Time = e.Time
	out.Side = e.Side
	// the handler may have inserted events and shifted indices
	for i := range tl.Events {
		if tl.Events[i].Time == e.Time {
			tl.Events[i] = out
			break
		}
	}
	if out.Skipped {
		c.summary.Skipped++
		return
	}
	c.summary.Dispatched++
}

func (c *Clock) rest() {
	if c.breakPause > 0 {
		time.Sleep(c.breakPause)
	}
}

// finish marks anything never reached as skipped and fires the finalization
// hook exactly once.
func (c *Clock) finish() {
	c.finishOnce.Do(func() {
		for side, tl := range c.timelines {
			for i := range tl.Events {
				e := &tl.Events[i]
				if e.Type != model.EventSentinel && !c.dispatched[side][e.Time] && !e.Skipped {
					e.Skipped = true
					c.summary.Skipped++
				}
			}
		}
		c.setState(Finished)
		if c.onFinish != nil {
			c.onFinish(c.summary)
		}
	})
}

func (c *Clock) setState(s State) {
	c.state.Store(int32(s))
	if c.onState != nil {
		c.onState(s, c.now)
	}
}

// Stoppage returns the minutes added after base (45 or 90): one per regular
// injury of that half, capped at five, extended when stoppage events need a
// later minute.
func Stoppage(home, away *model.Timeline, base int) int {
	period := 1
	if base == model.FullTime {
		period = 3
	}
	injuries, need := 0, 0
	for _, tl := range []*model.Timeline{home, away} {
		for _, e := range tl.Events {
			switch {
			case e.Type == model.EventInjury && !e.Time.Extra && e.Time.Period() == period:
				injuries++
			case e.Time.Extra && e.Time.Base() == base:
				if n := e.Time.Minute - base + 1; n > need {
					need = n
				}
			}
		}
	}
	stoppage := min(injuries, model.MaxStoppage)
	if need > stoppage {
		stoppage = need
	}
	return min(stoppage, model.MaxStoppage)
}
