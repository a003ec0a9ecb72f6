package match

import (
	"time"

	"github.com/okian/matchday/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxSubstitutions caps substitutions per side.
func WithMaxSubstitutions(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.maxSubs = n
		}
	}
}

// WithHomeAdvantage sets the ability bonus of the home side.
func WithHomeAdvantage(bonus float64) Option {
	return func(r *Runner) {
		if bonus >= 0 {
			r.homeAdvantage = bonus
		}
	}
}

// WithInjuryProbability sets the per-draw injury probability.
func WithInjuryProbability(p float64) Option {
	return func(r *Runner) {
		if p >= 0 && p <= 1 {
			r.injuryProbability = p
		}
	}
}

// WithPace sets the real time spent per simulated second.
func WithPace(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.pace = d
		}
	}
}

// WithObserver registers a callback receiving every dispatched event.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}
