package account

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often the scheduler looks for accounts
// whose deletion retention window has elapsed.
var DefaultSweepInterval = time.Hour

// SweepScheduler runs Lifecycle.SweepDeletions on a fixed interval until
// its context is canceled. Overlapping runs are prevented by the
// lifecycle's own single flight guard, so a slow sweep simply causes the
// next tick to return immediately.
type SweepScheduler struct {
	lifecycle *Lifecycle
	interval  time.Duration
	logger    Logger
}

func NewSweepScheduler(lifecycle *Lifecycle) *SweepScheduler {
	return &SweepScheduler{
		lifecycle: lifecycle,
		interval:  DefaultSweepInterval,
		logger:    defLogger{},
	}
}

func (s *SweepScheduler) WithInterval(d time.Duration) *SweepScheduler {
	if d > 0 {
		s.interval = d
	}
	return s
}

func (s *SweepScheduler) WithLogger(logger Logger) *SweepScheduler {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Run blocks until ctx is canceled. An immediate sweep happens on start,
// then one per interval.
func (s *SweepScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Start launches Run in a goroutine and returns a stop function.
func (s *SweepScheduler) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		_ = s.Run(ctx)
	}()
	return cancel
}

func (s *SweepScheduler) sweep(ctx context.Context) {
	purged, err := s.lifecycle.SweepDeletions(ctx)
	if err != nil {
		s.logger.Error("deletion sweep failed", "error", err)
		return
	}
	if purged > 0 {
		s.logger.Info("deletion sweep purged accounts", "count", purged)
	}
}
