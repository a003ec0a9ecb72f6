package lineup

import "github.com/okian/matchday/internal/domain/model"

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithFormation sets the eleven slots to fill, in priority order. The first
// slot should be GK.
func WithFormation(codes ...model.PositionCode) Option {
	return func(s *Selector) {
		if len(codes) == Starters {
			s.formation = append([]model.PositionCode(nil), codes...)
		}
	}
}

// WithBenchSize sets how many substitutes are named.
func WithBenchSize(n int) Option {
	return func(s *Selector) {
		if n >= 0 {
			s.benchSize = n
		}
	}
}
