package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Default polling intervals and the per-monitor minimum spacing between
// checks. Spacing is enforced independently of the poll interval so
// foreground-triggered checks stay bounded.
const (
	BudgetPollInterval   = 30 * time.Minute
	BudgetMinSpacing     = 5 * time.Minute
	GoalPollInterval     = 6 * time.Hour
	GoalMinSpacing       = time.Hour
	ReminderPollInterval = 2 * time.Hour
	ReminderMinSpacing   = 30 * time.Minute
)

// CheckFunc runs one monitor check cycle.
type CheckFunc func(ctx context.Context)

// Scheduler drives a monitor's check function on a fixed interval and on
// app-foreground transitions. It is Idle until Start arms it and returns to
// Idle on Stop. Stopping cancels the timer but never an in-flight check;
// a running check is allowed to finish and its result stands.
type Scheduler struct {
	name       string
	interval   time.Duration
	minSpacing time.Duration
	check      CheckFunc
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	lastCheck time.Time
	armed     bool
}

// NewScheduler creates a scheduler for the given check function.
func NewScheduler(name string, interval, minSpacing time.Duration, check CheckFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		name:       name,
		interval:   interval,
		minSpacing: minSpacing,
		check:      check,
		logger:     logger,
		now:        time.Now,
	}
}

// Start arms the scheduler: it runs one immediate check and then polls on
// the configured interval until Stop or ctx cancellation. Starting an armed
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.armed {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.cancel = cancel
	s.armed = true
	s.mu.Unlock()

	s.logger.Info("monitor armed", "monitor", s.name, "interval", s.interval)
	go s.loop(runCtx)
}

// Stop disarms the scheduler and cancels its timer. Safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.armed {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.armed = false
	s.ctx = nil
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.logger.Info("monitor disarmed", "monitor", s.name)
}

// OnForeground runs one immediate check, bounded by the minimum-spacing
// guard. Ignored while the scheduler is idle.
func (s *Scheduler) OnForeground() {
	s.mu.Lock()
	ctx := s.ctx
	armed := s.armed
	s.mu.Unlock()

	if !armed {
		return
	}
	s.tryCheck(ctx)
}

// OnBackground records the transition. Interval polling keeps running; the
// next foreground transition triggers an immediate guarded check.
func (s *Scheduler) OnBackground() {
	s.logger.Debug("app backgrounded", "monitor", s.name)
}

// Name returns the monitor name this scheduler drives.
func (s *Scheduler) Name() string {
	return s.name
}

// Armed reports whether the scheduler is currently running.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// LastCheck returns when the last check started, or the zero time.
func (s *Scheduler) LastCheck() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheck
}

func (s *Scheduler) loop(ctx context.Context) {
	s.tryCheck(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tryCheck(ctx)
		}
	}
}

// tryCheck runs the check unless the previous one started less than
// minSpacing ago. The timestamp is stamped before running so overlapping
// triggers for the same monitor collapse into one check.
func (s *Scheduler) tryCheck(ctx context.Context) {
	s.mu.Lock()
	now := s.now()
	if !s.lastCheck.IsZero() && now.Sub(s.lastCheck) < s.minSpacing {
		s.mu.Unlock()
		s.logger.Debug("check skipped by spacing guard", "monitor", s.name)
		return
	}
	s.lastCheck = now
	s.mu.Unlock()

	s.check(ctx)
}
