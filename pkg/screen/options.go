package screen

import (
	"log/slog"

	"github.com/starORAIT/HRAgent/pkg/resilient"
)

// Option configures a Coordinator.
type Option interface {
	apply(*Coordinator)
}

type optionFunc func(*Coordinator)

func (f optionFunc) apply(c *Coordinator) { f(c) }

// WithLogger sets the coordinator logger.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithPolicy sets the resilient-caller policy for scoring calls.
func WithPolicy(policy resilient.Policy) Option {
	return optionFunc(func(c *Coordinator) {
		c.policy = policy
	})
}

// WithWorkerID overrides the generated worker identity.
func WithWorkerID(id string) Option {
	return optionFunc(func(c *Coordinator) {
		if id != "" {
			c.workerID = id
		}
	})
}
