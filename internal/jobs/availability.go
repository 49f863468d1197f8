package jobs

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cloo-solutions/justicesearch/internal/metrics"
	"github.com/cloo-solutions/justicesearch/internal/telemetry"
	"go.uber.org/zap"
)

// AvailabilityChecker probes providers by name.
type AvailabilityChecker interface {
	Availability(ctx context.Context) map[string]bool
}

// AvailabilityProbe publishes provider availability as a gauge and logs
// every change. It does not influence which providers a search calls.
type AvailabilityProbe struct {
	checker AvailabilityChecker
	logger  *zap.Logger

	mu   sync.Mutex
	last map[string]bool
}

func NewAvailabilityProbe(checker AvailabilityChecker, logger *zap.Logger) *AvailabilityProbe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityProbe{checker: checker, logger: logger, last: map[string]bool{}}
}

// ProcessJobs runs one probe round. It reports an error naming the
// providers that are down so the worker logs it.
func (p *AvailabilityProbe) ProcessJobs(ctx context.Context) error {
	ctx, span := telemetry.StartProbe(ctx)
	current := p.checker.Availability(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	var down []string
	for name, up := range current {
		metrics.SetProviderUp(name, up)
		if !up {
			down = append(down, name)
		}

		prev, seen := p.last[name]
		switch {
		case !seen:
			p.logger.Info("provider probed", zap.String("provider", name), zap.Bool("available", up))
		case prev != up:
			p.logger.Warn("provider availability changed", zap.String("provider", name), zap.Bool("available", up))
		}
		p.last[name] = up
	}

	if len(down) > 0 {
		slices.Sort(down)
		span.Finish(telemetry.OutcomeDegraded)
		return fmt.Errorf("providers unavailable: %v", down)
	}
	span.Finish(telemetry.OutcomeOK)
	return nil
}

// Last returns the result of the most recent probe round.
func (p *AvailabilityProbe) Last() map[string]bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]bool, len(p.last))
	for k, v := range p.last {
		out[k] = v
	}
	return out
}
