package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

const testInterval = 10 * time.Second

// scriptedRefresher replays one step per call; the last step repeats.
type scriptedRefresher struct {
	mu    sync.Mutex
	steps []func(ctx context.Context) error
	calls int

	running atomic.Int32
	overlap atomic.Bool
}

func (s *scriptedRefresher) Refresh(ctx context.Context) (CycleResult, error) {
	if s.running.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.running.Add(-1)

	s.mu.Lock()
	step := s.steps[min(s.calls, len(s.steps)-1)]
	s.calls++
	s.mu.Unlock()

	err := step(ctx)
	return CycleResult{ID: "cycle", Mode: ModeCatchUp, Err: err}, err
}

func (s *scriptedRefresher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func succeed(context.Context) error { return nil }

type schedulerHarness struct {
	t       *testing.T
	clock   *clock.TestClock
	ticks   chan time.Duration
	results chan CycleResult
	sched   *Scheduler
}

func newSchedulerHarness(t *testing.T, r Refresher, timeout time.Duration) *schedulerHarness {
	t.Helper()

	ticks := make(chan time.Duration, 16)
	clk := clock.NewTestClockWithTickSignal(time.Unix(1700000000, 0), ticks)
	h := &schedulerHarness{
		t:       t,
		clock:   clk,
		ticks:   ticks,
		results: make(chan CycleResult, 16),
		sched: NewScheduler(r, SchedulerConfig{
			Interval:     testInterval,
			CycleTimeout: timeout,
			Clock:        clk,
			Logger:       quietLogger,
		}),
	}
	h.sched.OnCycleComplete(func(res CycleResult) { h.results <- res })
	return h
}

// advance waits for the scheduler to arm its timer, then fires it.
func (h *schedulerHarness) advance() {
	h.t.Helper()
	select {
	case d := <-h.ticks:
		require.Equal(h.t, testInterval, d)
	case <-time.After(5 * time.Second):
		h.t.Fatal("scheduler never waited for the next cycle")
	}
	h.clock.SetTime(h.clock.Now().Add(testInterval))
}

func (h *schedulerHarness) nextResult() CycleResult {
	h.t.Helper()
	select {
	case res := <-h.results:
		return res
	case <-time.After(5 * time.Second):
		h.t.Fatal("no cycle completed")
		return CycleResult{}
	}
}

func TestStartRefreshRunsFirstCycleImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedRefresher{steps: []func(context.Context) error{succeed}}
	h := newSchedulerHarness(t, r, 0)

	_, ok := h.sched.LastResult()
	require.False(t, ok)

	require.True(t, h.sched.StartRefresh(ctx))
	require.Equal(t, 1, r.Calls())
	require.True(t, h.nextResult().Succeeded())

	last, ok := h.sched.LastResult()
	require.True(t, ok)
	require.True(t, last.Succeeded())
}

func TestSchedulerRunsEveryInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedRefresher{steps: []func(context.Context) error{succeed}}
	h := newSchedulerHarness(t, r, 0)

	require.True(t, h.sched.StartRefresh(ctx))
	h.nextResult()

	for i := 2; i <= 4; i++ {
		h.advance()
		require.True(t, h.nextResult().Succeeded())
		require.Equal(t, i, r.Calls())
	}
	require.False(t, r.overlap.Load())
}

func TestSchedulerReschedulesAfterFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	daemonDown := errors.New("daemon down")
	r := &scriptedRefresher{steps: []func(context.Context) error{
		func(context.Context) error { return daemonDown },
		succeed,
	}}
	h := newSchedulerHarness(t, r, 0)

	require.False(t, h.sched.StartRefresh(ctx))
	first := h.nextResult()
	require.ErrorIs(t, first.Err, daemonDown)

	h.advance()
	require.True(t, h.nextResult().Succeeded())
	require.Equal(t, 2, r.Calls())
}

func TestSchedulerRecoversFromPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedRefresher{steps: []func(context.Context) error{
		func(context.Context) error { panic("nil map") },
		succeed,
	}}
	h := newSchedulerHarness(t, r, 0)

	require.False(t, h.sched.StartRefresh(ctx))
	res := h.nextResult()
	require.ErrorContains(t, res.Err, "nil map")

	h.advance()
	require.True(t, h.nextResult().Succeeded())
}

func TestSchedulerCycleTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedRefresher{steps: []func(context.Context) error{
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}}
	h := newSchedulerHarness(t, r, 20*time.Millisecond)

	require.False(t, h.sched.StartRefresh(ctx))
	require.ErrorIs(t, h.nextResult().Err, context.DeadlineExceeded)
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := &scriptedRefresher{steps: []func(context.Context) error{succeed}}
	h := newSchedulerHarness(t, r, 0)

	require.True(t, h.sched.StartRefresh(ctx))
	h.nextResult()

	cancel()
	select {
	case <-h.sched.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	require.Equal(t, 1, r.Calls())
}

func TestStartRefreshTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scriptedRefresher{steps: []func(context.Context) error{succeed}}
	h := newSchedulerHarness(t, r, 0)

	require.True(t, h.sched.StartRefresh(ctx))
	require.True(t, h.sched.StartRefresh(ctx))
	require.Equal(t, 1, r.Calls())
}

func TestSchedulerWithReconciler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := fixture()
	r := newTestReconciler(t, src, memoryStore(t), false)
	h := newSchedulerHarness(t, r, 0)

	require.True(t, h.sched.StartRefresh(ctx))
	first := h.nextResult()
	require.Equal(t, ModeFastForward, first.Mode)
	require.Equal(t, 9, first.TotalInserted())

	src.add("b5", receive("", "DAddr7", 5000, "1", "tx11", "b5"))
	h.advance()
	second := h.nextResult()
	require.Equal(t, ModeCatchUp, second.Mode)
	require.Equal(t, "b5", second.Checkpoint)
}

func TestRunCycleReturnsItsResult(t *testing.T) {
	down := errors.New("daemon down")
	r := &scriptedRefresher{steps: []func(context.Context) error{
		func(context.Context) error { return down },
	}}
	h := newSchedulerHarness(t, r, 0)

	res := h.sched.RunCycle(context.Background())
	require.ErrorIs(t, res.Err, down)
	require.Equal(t, ModeCatchUp, res.Mode)
	require.ErrorIs(t, h.nextResult().Err, down)
}
