package loadtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llm-chat-server/internal/domain"
	"github.com/llm-chat-server/internal/metrics"
)

// State identifies where a run is in its lifecycle.
type State int32

const (
	StateCreated State = iota
	StateRamping
	StateRunning
	StateDraining
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRamping:
		return "ramping"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Config holds the parameters of a single load-test run.
type Config struct {
	Users     int
	SpawnRate float64 // users activated per second
	TestTime  time.Duration

	// RequestTimeout bounds each individual chat request.
	RequestTimeout time.Duration
	// DrainGrace bounds the wait for users to stop after the deadline.
	// Zero means one RequestTimeout.
	DrainGrace time.Duration
}

// Controller orchestrates one load-test run end to end: it activates
// virtual users per the ramp schedule, enforces the test duration,
// signals cancellation at the deadline and waits (bounded) for every
// user to stop before producing the summary. One controller instance
// corresponds to exactly one run; it owns the run's collector and
// shares no state with concurrently executing runs.
type Controller struct {
	cfg       Config
	target    Target
	collector *Collector
	logger    *logrus.Logger

	state  int32
	active int64
}

// NewController creates a controller for one run. The configuration is
// expected to be pre-validated by the API layer; the guards here only
// protect against programming errors.
func NewController(cfg Config, target Target, logger *logrus.Logger) (*Controller, error) {
	if cfg.Users < 1 {
		return nil, fmt.Errorf("users must be at least 1, got %d", cfg.Users)
	}
	if cfg.SpawnRate <= 0 {
		return nil, fmt.Errorf("spawn rate must be positive, got %g", cfg.SpawnRate)
	}
	if cfg.TestTime <= 0 {
		return nil, fmt.Errorf("test time must be positive, got %s", cfg.TestTime)
	}
	if target == nil {
		return nil, fmt.Errorf("target is required")
	}
	if cfg.DrainGrace <= 0 {
		cfg.DrainGrace = cfg.RequestTimeout
	}
	if cfg.DrainGrace <= 0 {
		cfg.DrainGrace = 10 * time.Second
	}

	return &Controller{
		cfg:       cfg,
		target:    target,
		collector: NewCollector(),
		logger:    logger,
	}, nil
}

// State returns the run's current lifecycle state.
func (c *Controller) State() State {
	return State(atomic.LoadInt32(&c.state))
}

// ActiveUsers returns the number of virtual users currently looping.
func (c *Controller) ActiveUsers() int64 {
	return atomic.LoadInt64(&c.active)
}

// Collector exposes the run's collector, mainly for tests.
func (c *Controller) Collector() *Collector {
	return c.collector
}

func (c *Controller) setState(s State) {
	atomic.StoreInt32(&c.state, int32(s))
}

// Run executes the load test and blocks until the summary is ready.
// Cancelling ctx ends the run early: users stop at their next loop
// iteration and whatever was recorded so far is summarized. The only
// error Run returns is failing to start at all.
func (c *Controller) Run(ctx context.Context) (domain.LoadTestSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.LoadTestSummary{}, fmt.Errorf("run aborted before start: %w", err)
	}

	offsets := Schedule(c.cfg.Users, c.cfg.SpawnRate)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startedAt := time.Now()
	c.setState(StateRamping)
	c.logger.WithFields(logrus.Fields{
		"users":      c.cfg.Users,
		"spawn_rate": c.cfg.SpawnRate,
		"test_time":  c.cfg.TestTime.String(),
	}).Info("Load test run starting")

	var wg sync.WaitGroup
	for _, offset := range offsets {
		wg.Add(1)
		go func(offset time.Duration) {
			defer wg.Done()

			timer := time.NewTimer(offset)
			defer timer.Stop()
			select {
			case <-runCtx.Done():
				return
			case <-timer.C:
			}

			atomic.AddInt64(&c.active, 1)
			metrics.VirtualUserStarted()
			defer func() {
				atomic.AddInt64(&c.active, -1)
				metrics.VirtualUserStopped()
			}()

			u := &virtualUser{target: c.target, collector: c.collector}
			u.loop(runCtx)
		}(offset)
	}
	// Activation is scheduled, not stepped through, so the run is
	// considered running as soon as the ramp is in place.
	c.setState(StateRunning)

	deadline := time.NewTimer(c.cfg.TestTime)
	defer deadline.Stop()
	select {
	case <-ctx.Done():
		// Caller gave up early; drain with what we have.
	case <-deadline.C:
	}

	// The rate denominator is the active window, start to drain begin.
	elapsed := time.Since(startedAt)
	c.setState(StateDraining)
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	grace := time.NewTimer(c.cfg.DrainGrace)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
		// A user that never returns is recorded as a failed outcome and
		// the run proceeds rather than waiting indefinitely.
		stuck := atomic.LoadInt64(&c.active)
		for i := int64(0); i < stuck; i++ {
			c.collector.Record(Outcome{Latency: c.cfg.DrainGrace, ErrorKind: KindStalled})
		}
		c.logger.WithField("stuck_users", stuck).Warn("Drain grace elapsed with users still active")
	}

	c.setState(StateCompleted)
	summary := c.collector.Summary(c.cfg.Users, elapsed)
	metrics.RecordLoadTestRun("completed")

	c.logger.WithFields(logrus.Fields{
		"test_duration":       summary.TestDuration,
		"total_requests":      summary.TotalRequests,
		"successful_requests": summary.SuccessfulRequests,
		"failed_requests":     summary.FailedRequests,
		"requests_per_second": summary.RequestsPerSecond,
	}).Info("Load test run completed")

	return summary, nil
}
