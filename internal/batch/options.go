package batch

import (
	"github.com/okian/matchday/internal/domain/dedupe"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/lineup"
	"github.com/okian/matchday/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers caps the worker pool. n <= 0 keeps the default of one worker
// per CPU minus one.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSeed sets the base seed fixture seeds are derived from.
func WithSeed(seed int64) Option {
	return func(o *Orchestrator) {
		o.seed = seed
	}
}

// WithRunnerOptions configures the match runner used for every fixture.
func WithRunnerOptions(opts ...match.Option) Option {
	return func(o *Orchestrator) {
		o.runnerOpts = append(o.runnerOpts, opts...)
	}
}

// WithSelector sets the lineup selector.
func WithSelector(s *lineup.Selector) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.selector = s
		}
	}
}

// WithDeduper shares fixture claims with other orchestrators.
func WithDeduper(d dedupe.Deduper) Option {
	return func(o *Orchestrator) {
		if d != nil {
			o.claims = d
		}
	}
}

// WithNotifier sets where bans, morale changes and narratives are sent.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithProgress sets a callback invoked after every chunk.
func WithProgress(fn func(Progress)) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithYellowCardThreshold sets how many bookings trigger a one-match ban.
func WithYellowCardThreshold(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.yellowThreshold = n
		}
	}
}

// WithNarrativeMatchday sets the first matchday narratives are detected for.
func WithNarrativeMatchday(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.narrativeMatchday = n
		}
	}
}

// WithRelegationSlots sets the size of the relegation zone.
func WithRelegationSlots(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.relegationSlots = n
		}
	}
}
