package repository

import (
	"os"

	"github.com/okian/matchday/pkg/logger"
)

type options struct {
	logger    logger.Logger
	workerDir string
	verbose   bool
}

func defaultOptions() options {
	return options{
		logger:    logger.Get().Named("repository"),
		workerDir: os.TempDir(),
	}
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkerDir sets the directory worker-local database copies are created in.
// Only the sqlite store uses it.
func WithWorkerDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.workerDir = dir
		}
	}
}

// WithVerboseSQL logs every statement the sqlite store runs.
func WithVerboseSQL(v bool) Option {
	return func(o *options) {
		o.verbose = v
	}
}
