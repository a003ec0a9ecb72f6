package substitution

// Option applies a configuration option to the Team.
type Option func(*Team)

// WithMaxSubstitutions sets the substitution allowance of the side.
func WithMaxSubstitutions(n int) Option {
	return func(t *Team) {
		if n >= 0 {
			t.maxSubs = n
		}
	}
}

// WithKeeperDelay sets the simulated seconds between a goalkeeper's red card
// and the substitution that brings a replacement keeper on.
func WithKeeperDelay(seconds int) Option {
	return func(t *Team) {
		if seconds > 0 {
			t.keeperDelay = seconds
		}
	}
}
