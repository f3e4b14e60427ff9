package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/pterm/pterm"
)

// Refresher runs a single reconciliation cycle.
type Refresher interface {
	Refresh(ctx context.Context) (CycleResult, error)
}

type SchedulerConfig struct {
	Interval time.Duration

	// CycleTimeout bounds a single cycle. Zero means no deadline, in which
	// case a hung daemon call stalls the schedule.
	CycleTimeout time.Duration

	Clock  clock.Clock
	Logger *pterm.Logger
}

// Scheduler drives a Refresher on a fixed cadence. The wait for the next
// cycle starts only once the previous one has finished, so cycles never
// overlap. A failed cycle is logged and the schedule carries on.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	clock     clock.Clock
	log       *pterm.Logger

	mu        sync.Mutex
	observers []func(CycleResult)
	last      *CycleResult
	started   bool
	done      chan struct{}
}

func NewScheduler(r Refresher, cfg SchedulerConfig) *Scheduler {
	s := &Scheduler{
		refresher: r,
		interval:  cfg.Interval,
		timeout:   cfg.CycleTimeout,
		clock:     cfg.Clock,
		log:       cfg.Logger,
		done:      make(chan struct{}),
	}
	if s.clock == nil {
		s.clock = clock.NewDefaultClock()
	}
	if s.log == nil {
		s.log = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}
	return s
}

// OnCycleComplete registers fn to be called after every cycle, in the
// scheduler's goroutine. fn must not block for long.
func (s *Scheduler) OnCycleComplete(fn func(CycleResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// LastResult returns the most recent cycle's result, if any.
func (s *Scheduler) LastResult() (CycleResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return CycleResult{}, false
	}
	return *s.last, true
}

// StartRefresh runs the first cycle immediately and reports whether it
// succeeded. Later cycles follow every interval until ctx is done.
func (s *Scheduler) StartRefresh(ctx context.Context) bool {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		s.log.Warn("Refresh schedule already running")
		last, ok := s.LastResult()
		return ok && last.Succeeded()
	}
	s.started = true
	s.mu.Unlock()

	res := s.RunCycle(ctx)
	go s.loop(ctx)
	return res.Succeeded()
}

// Done is closed when the schedule has stopped.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.TickAfter(s.interval):
		}

		s.RunCycle(ctx)
	}
}

// RunCycle runs one cycle outside of the schedule, logs the outcome and
// notifies observers. The result is this cycle's, even if another one
// finishes before the caller looks at LastResult.
func (s *Scheduler) RunCycle(ctx context.Context) CycleResult {
	cycleCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.timeout > 0 {
		cycleCtx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	res := s.refresh(cycleCtx)
	if res.Err != nil {
		s.log.Error("Error occurred during refresh", s.log.Args(
			"cycle", res.ID,
			"mode", string(res.Mode),
			"error", res.Err.Error(),
		))
	} else {
		s.log.Info("Refresh succeeded", s.log.Args(
			"cycle", res.ID,
			"mode", string(res.Mode),
			"inserted", res.TotalInserted(),
			"checkpoint", res.Checkpoint,
			"took", res.Duration().String(),
		))
	}

	s.mu.Lock()
	s.last = &res
	observers := append([]func(CycleResult){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(res)
	}
	return res
}

// refresh calls the refresher, turning a panic into a failed cycle.
func (s *Scheduler) refresh(ctx context.Context) (res CycleResult) {
	started := s.clock.Now()
	defer func() {
		if p := recover(); p != nil {
			res = CycleResult{
				StartedAt:  started,
				FinishedAt: s.clock.Now(),
				Err:        fmt.Errorf("refresh panicked: %v", p),
			}
		}
	}()

	res, err := s.refresher.Refresh(ctx)
	if err != nil && res.Err == nil {
		res.Err = err
	}
	return res
}
