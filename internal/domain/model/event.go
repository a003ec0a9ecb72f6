package model

import (
	"fmt"
	"sort"
	"strconv"
)

// Match clock boundaries.
const (
	HalfTime       = 45
	FullTime       = 90
	MaxStoppage    = 5
	MaxExtraOffset = 4  // stoppage events sit at base+0 .. base+4
	CollisionStep  = 10 // seconds the collision probe advances per attempt
	maxProbes      = 400
)

// Side identifies the home or away team of a fixture.
type Side int

// Sides.
const (
	Home Side = iota
	Away
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Home {
		return Away
	}
	return Home
}

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}

// EventType enumerates what can happen during a match.
type EventType string

// Event types.
const (
	EventGoal         EventType = "goal"
	EventPenaltyGoal  EventType = "penalty_goal"
	EventPenaltyMiss  EventType = "penalty_miss"
	EventOwnGoal      EventType = "own_goal"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventInjury       EventType = "injury"
	EventSubstitution EventType = "substitution"
	EventSentinel     EventType = "sentinel"
)

// Scores reports whether the event counts as a goal for the side owning it.
// Own goals count for the opposite side and are excluded here.
func (t EventType) Scores() bool {
	return t == EventGoal || t == EventPenaltyGoal
}

// SentinelTime is the fixed time of the terminal marker present in every timeline.
var SentinelTime = EventTime{Minute: 2, Second: 2} //nolint:gochecknoglobals // fixed marker

// EventTime is a simulated match instant. Stoppage events carry Extra=true and
// a minute between base and base+MaxExtraOffset, where base is 45 or 90.
type EventTime struct {
	Minute int
	Second int
	Extra  bool
}

// Base returns the half boundary a stoppage event belongs to.
func (t EventTime) Base() int {
	if t.Minute >= FullTime {
		return FullTime
	}
	return HalfTime
}

// Period returns 1 for the first half, 2 for first-half stoppage, 3 for the
// second half and 4 for second-half stoppage.
func (t EventTime) Period() int {
	switch {
	case t.Extra && t.Minute >= FullTime:
		return 4
	case t.Extra:
		return 2
	case t.Minute < HalfTime:
		return 1
	default:
		return 3
	}
}

// Less orders times by period, minute, second.
func (t EventTime) Less(o EventTime) bool {
	if pt, po := t.Period(), o.Period(); pt != po {
		return pt < po
	}
	if t.Minute != o.Minute {
		return t.Minute < o.Minute
	}
	return t.Second < o.Second
}

// Advance moves the time forward by seconds, carrying into minutes.
func (t EventTime) Advance(seconds int) EventTime {
	t.Second += seconds
	for t.Second >= 60 {
		t.Second -= 60
		t.Minute++
	}
	return t
}

// Normalize turns a regular time that landed on a half boundary into a stoppage
// time and wraps stoppage times that overran the stoppage cap.
func (t EventTime) Normalize() EventTime {
	if t.Extra {
		if base := t.Base(); t.Minute > base+MaxExtraOffset {
			t.Minute = base
		}
		return t
	}
	switch {
	case t.Minute >= FullTime:
		t.Minute = FullTime
		t.Extra = true
	case t.Minute == HalfTime:
		t.Extra = true
	}
	return t
}

// Key returns the "minute:second" identity used for collision checks.
func (t EventTime) Key() string {
	key := strconv.Itoa(t.Minute) + ":" + strconv.Itoa(t.Second)
	if t.Extra {
		key += "+"
	}
	return key
}

// Display renders the minute as persisted: "37" or "45+2".
func (t EventTime) Display() string {
	if t.Extra {
		base := t.Base()
		return fmt.Sprintf("%d+%d", base, t.Minute-base+1)
	}
	return strconv.Itoa(t.Minute)
}

// Event is one entry of a side's timeline. Player fields are filled when the
// event is dispatched, since only then is it known who is on the pitch.
type Event struct {
	Time         EventTime
	Side         Side
	Type         EventType
	Player       string
	Assister     string
	PlayerOff    string
	PlayerOn     string
	Forced       bool // substitution pinned to an injury
	SecondYellow bool // red card produced by a second booking
	Skipped      bool // dispatched but had no effect (e.g. substitution allowance exhausted)
}

// Timeline is the time-ordered list of one side's events.
type Timeline struct {
	Side   Side
	Events []Event
}

// NewTimeline returns a timeline holding only the sentinel.
func NewTimeline(side Side) *Timeline {
	tl := &Timeline{Side: side}
	tl.Events = append(tl.Events, Event{Time: SentinelTime, Side: side, Type: EventSentinel})
	return tl
}

// Has reports whether an event already occupies t.
func (tl *Timeline) Has(t EventTime) bool {
	for i := range tl.Events {
		if tl.Events[i].Time == t {
			return true
		}
	}
	return false
}

// FreeSlot returns the first unoccupied time at or after t, probing forward in
// CollisionStep increments.
func (tl *Timeline) FreeSlot(t EventTime) EventTime {
	t = t.Normalize()
	for i := 0; i < maxProbes && tl.Has(t); i++ {
		t = t.Advance(CollisionStep).Normalize()
	}
	return t
}

// Insert places e at the first free slot at or after e.Time, keeping the list
// ordered, and returns the time it was stored at.
func (tl *Timeline) Insert(e Event) EventTime {
	e.Time = tl.FreeSlot(e.Time)
	e.Side = tl.Side
	idx := sort.Search(len(tl.Events), func(i int) bool { return e.Time.Less(tl.Events[i].Time) })
	tl.Events = append(tl.Events, Event{})
	copy(tl.Events[idx+1:], tl.Events[idx:])
	tl.Events[idx] = e
	return e.Time
}

// Remove deletes the event stored at t and reports whether one was there.
func (tl *Timeline) Remove(t EventTime) bool {
	for i := range tl.Events {
		if tl.Events[i].Time == t {
			tl.Events = append(tl.Events[:i], tl.Events[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns how many events of type t the timeline holds.
func (tl *Timeline) Count(t EventType) int {
	n := 0
	for i := range tl.Events {
		if tl.Events[i].Type == t {
			n++
		}
	}
	return n
}

// Persistable returns the events without the sentinel and skipped entries.
func (tl *Timeline) Persistable() []Event {
	out := make([]Event, 0, len(tl.Events))
	for _, e := range tl.Events {
		if e.Type == EventSentinel || e.Skipped {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Score holds goals for both sides.
type Score struct {
	Home int
	Away int
}

// Of returns the goals of side.
func (s Score) Of(side Side) int {
	if side == Home {
		return s.Home
	}
	return s.Away
}

// Add counts one goal for side.
func (s *Score) Add(side Side) {
	if side == Home {
		s.Home++
		return
	}
	s.Away++
}

// Remove takes back one previously counted goal of side, never going below zero.
func (s *Score) Remove(side Side) {
	if side == Home && s.Home > 0 {
		s.Home--
	}
	if side == Away && s.Away > 0 {
		s.Away--
	}
}

// Result returns +1 when side won, 0 on a draw and -1 when it lost.
func (s Score) Result(side Side) int {
	a, b := s.Of(side), s.Of(side.Other())
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
