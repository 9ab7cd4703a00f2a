package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-chat-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel) // Reduce noise in tests
	return logger
}

// stubTarget is a deterministic in-memory target.
type stubTarget struct {
	calls int64
	delay time.Duration
	err   error
}

func (s *stubTarget) SendChat(ctx context.Context) error {
	atomic.AddInt64(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.err
}

func TestNewControllerValidation(t *testing.T) {
	target := &stubTarget{}
	logger := testLogger()

	_, err := NewController(Config{Users: 0, SpawnRate: 1, TestTime: time.Second}, target, logger)
	assert.Error(t, err)

	_, err = NewController(Config{Users: 1, SpawnRate: 0, TestTime: time.Second}, target, logger)
	assert.Error(t, err)

	_, err = NewController(Config{Users: 1, SpawnRate: 1, TestTime: 0}, target, logger)
	assert.Error(t, err)

	_, err = NewController(Config{Users: 1, SpawnRate: 1, TestTime: time.Second}, nil, logger)
	assert.Error(t, err)

	c, err := NewController(Config{Users: 1, SpawnRate: 1, TestTime: time.Second}, target, logger)
	require.NoError(t, err)
	assert.Equal(t, StateCreated, c.State())
}

func TestControllerRunCompletes(t *testing.T) {
	target := &stubTarget{delay: 2 * time.Millisecond}
	controller, err := NewController(Config{
		Users:          4,
		SpawnRate:      50,
		TestTime:       300 * time.Millisecond,
		RequestTimeout: 500 * time.Millisecond,
	}, target, testLogger())
	require.NoError(t, err)

	start := time.Now()
	summary, err := controller.Run(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, controller.State())
	assert.Equal(t, int64(0), controller.ActiveUsers())

	// The run should last roughly test_time plus a short drain.
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)

	assert.Greater(t, summary.TotalRequests, int64(0))
	assert.Equal(t, summary.TotalRequests, summary.SuccessfulRequests+summary.FailedRequests)
	assert.Equal(t, int64(0), summary.FailedRequests)
	assert.Equal(t, 4, summary.ConcurrentUsers)
	assert.InDelta(t, float64(summary.TotalRequests)/summary.TestDuration, summary.RequestsPerSecond, 0.01)
}

func TestControllerAllRequestsFail(t *testing.T) {
	target := &stubTarget{err: &RequestError{Kind: KindTransport, Err: errors.New("connection refused")}}
	controller, err := NewController(Config{
		Users:          3,
		SpawnRate:      100,
		TestTime:       150 * time.Millisecond,
		RequestTimeout: 200 * time.Millisecond,
	}, target, testLogger())
	require.NoError(t, err)

	summary, err := controller.Run(context.Background())
	require.NoError(t, err, "failed traffic is data, not a run failure")

	assert.Greater(t, summary.TotalRequests, int64(0))
	assert.Equal(t, summary.TotalRequests, summary.FailedRequests)
	assert.Equal(t, int64(0), summary.SuccessfulRequests)
	require.NotEmpty(t, summary.Errors)
	assert.Equal(t, KindTransport, summary.Errors[0].Name)
}

func TestControllerLateUsersStillScheduled(t *testing.T) {
	// 5 users at 1/s with a 150ms test: only the first user activates
	// before the deadline, the rest are scheduled but never get a turn.
	target := &stubTarget{delay: time.Millisecond}
	controller, err := NewController(Config{
		Users:          5,
		SpawnRate:      1,
		TestTime:       150 * time.Millisecond,
		RequestTimeout: 100 * time.Millisecond,
	}, target, testLogger())
	require.NoError(t, err)

	summary, err := controller.Run(context.Background())
	require.NoError(t, err)

	// The summary still reports the configured ceiling.
	assert.Equal(t, 5, summary.ConcurrentUsers)
	assert.Greater(t, summary.TotalRequests, int64(0))
}

func TestControllerRunIsolation(t *testing.T) {
	// Two sequential runs with separate controllers must not share
	// state: each summary reflects only its own traffic.
	makeRun := func() domain.LoadTestSummary {
		target := &stubTarget{delay: time.Millisecond}
		controller, err := NewController(Config{
			Users:          2,
			SpawnRate:      100,
			TestTime:       100 * time.Millisecond,
			RequestTimeout: 100 * time.Millisecond,
		}, target, testLogger())
		require.NoError(t, err)

		summary, err := controller.Run(context.Background())
		require.NoError(t, err)
		return summary
	}

	first := makeRun()
	second := makeRun()

	assert.Greater(t, first.TotalRequests, int64(0))
	assert.Greater(t, second.TotalRequests, int64(0))
	// Neither run's totals include the other's traffic: both stay in
	// the range a 100ms window with 2 users can produce alone.
	assert.Less(t, first.TotalRequests, int64(400))
	assert.Less(t, second.TotalRequests, int64(400))
}

func TestControllerConcurrentRuns(t *testing.T) {
	type result struct {
		summary domain.LoadTestSummary
		err     error
	}

	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			target := &stubTarget{delay: time.Millisecond}
			controller, err := NewController(Config{
				Users:          2,
				SpawnRate:      100,
				TestTime:       100 * time.Millisecond,
				RequestTimeout: 100 * time.Millisecond,
			}, target, testLogger())
			if err != nil {
				results <- result{err: err}
				return
			}
			summary, err := controller.Run(context.Background())
			results <- result{summary: summary, err: err}
		}()
	}

	for i := 0; i < 2; i++ {
		res := <-results
		require.NoError(t, res.err)
		assert.Equal(t, res.summary.TotalRequests, res.summary.SuccessfulRequests+res.summary.FailedRequests)
		assert.Equal(t, 2, res.summary.ConcurrentUsers)
	}
}

func TestControllerCancelledBeforeStart(t *testing.T) {
	target := &stubTarget{}
	controller, err := NewController(Config{
		Users:     1,
		SpawnRate: 1,
		TestTime:  time.Second,
	}, target, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = controller.Run(ctx)
	assert.Error(t, err)
	assert.Equal(t, int64(0), atomic.LoadInt64(&target.calls))
}

func TestControllerEarlyCancellation(t *testing.T) {
	target := &stubTarget{delay: time.Millisecond}
	controller, err := NewController(Config{
		Users:          2,
		SpawnRate:      100,
		TestTime:       10 * time.Second,
		RequestTimeout: 100 * time.Millisecond,
	}, target, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	summary, err := controller.Run(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StateCompleted, controller.State())
	assert.Equal(t, summary.TotalRequests, summary.SuccessfulRequests+summary.FailedRequests)
}

func TestControllerAgainstHTTPGateway(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(domain.ChatResponse{Content: "ok"})
	}))
	defer srv.Close()

	target := NewHTTPTarget(srv.URL, "Why is the sky blue?", time.Second)
	controller, err := NewController(Config{
		Users:          5,
		SpawnRate:      50,
		TestTime:       300 * time.Millisecond,
		RequestTimeout: time.Second,
	}, target, testLogger())
	require.NoError(t, err)

	summary, err := controller.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, atomic.LoadInt64(&hits), summary.TotalRequests)
	assert.Equal(t, summary.TotalRequests, summary.SuccessfulRequests)
	assert.Greater(t, summary.ResponseTime.Mean, 0.0)
}
