package application

import (
	"context"

	"CareerConnect/internal/metrics"

	"go.uber.org/zap"
)

type effect struct {
	name string
	run  func(ctx context.Context) error
}

// effects runs the secondary writes that follow a committed ledger write. Each one is attempted
// on its own and a failure is logged and counted, never returned and never rolled back.
type effects struct {
	logger *zap.Logger
	queue  []effect
}

func newEffects(logger *zap.Logger, fields ...zap.Field) *effects {
	return &effects{logger: logger.With(fields...)}
}

func (e *effects) add(name string, run func(ctx context.Context) error) *effects {
	e.queue = append(e.queue, effect{name: name, run: run})
	return e
}

// run returns the number of effects that failed.
func (e *effects) run(ctx context.Context) int {
	failed := 0
	for _, eff := range e.queue {
		if err := eff.run(ctx); err != nil {
			failed++
			metrics.SideEffectFailures.WithLabelValues(eff.name).Inc()
			e.logger.Warn("side effect failed", zap.String("effect", eff.name), zap.Error(err))
		}
	}
	return failed
}
