package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

const defaultInterval = time.Minute

// Sweeper releases per-user state that has sat unused for longer than idle.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// ServiceParams configure the janitor.
type ServiceParams struct {
	Logger   *logger.Logger
	Sweepers map[string]Sweeper
	IdleTTL  time.Duration
	Interval time.Duration
}

// Service sweeps idle per-user state on a fixed cadence.
type Service struct {
	logg     *logger.Logger
	sweepers map[string]Sweeper
	idle     time.Duration
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.IdleTTL <= 0 {
		return nil, fmt.Errorf("idle ttl must be positive")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		sweepers: params.Sweepers,
		idle:     params.IdleTTL,
		interval: interval,
	}, nil
}

// Run sweeps until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle sweeps every registered store once and returns the number released per name.
func (s *Service) RunCycle(ctx context.Context) map[string]int {
	released := make(map[string]int, len(s.sweepers))
	for name, sweeper := range s.sweepers {
		n := sweeper.Sweep(s.idle)
		released[name] = n
		if n > 0 {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"store":    name,
				"released": n,
			}), "janitor.idle_released")
		}
	}
	return released
}
