package loadtest

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/llm-chat-server/internal/domain"
)

// Outcome is the recorded result of one simulated request. Outcomes
// are immutable once recorded.
type Outcome struct {
	Success   bool
	Latency   time.Duration
	ErrorKind string
}

// Collector accumulates request outcomes from all virtual users of a
// single run and reduces them into a LoadTestSummary. It is safe for
// concurrent use; counters are atomic and the latency histogram is
// guarded by a mutex. Each run owns its own Collector instance, so
// concurrent runs never share state.
type Collector struct {
	total   int64
	success int64
	failed  int64

	mu       sync.Mutex
	hist     *hdrhistogram.Histogram // microseconds
	errKinds map[string]int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	// 1us to 10min, 3 significant figures
	return &Collector{
		hist:     hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3),
		errKinds: make(map[string]int64),
	}
}

// Record appends one outcome. Latencies of failed requests are
// recorded too.
func (c *Collector) Record(o Outcome) {
	atomic.AddInt64(&c.total, 1)
	if o.Success {
		atomic.AddInt64(&c.success, 1)
	} else {
		atomic.AddInt64(&c.failed, 1)
	}

	us := o.Latency.Microseconds()
	if us < 1 {
		us = 1
	}

	c.mu.Lock()
	if err := c.hist.RecordValue(us); err != nil {
		// Out of range; clamp to the histogram ceiling.
		_ = c.hist.RecordValue(c.hist.HighestTrackableValue())
	}
	if !o.Success && o.ErrorKind != "" {
		c.errKinds[o.ErrorKind]++
	}
	c.mu.Unlock()
}

// TotalRequests returns the number of outcomes recorded so far.
func (c *Collector) TotalRequests() int64 {
	return atomic.LoadInt64(&c.total)
}

// Summary reduces the recorded outcomes into the final result. elapsed
// is the active duration of the run, measured from start to the moment
// draining began, so slow aggregation cannot dilute the request rate.
func (c *Collector) Summary(users int, elapsed time.Duration) domain.LoadTestSummary {
	total := atomic.LoadInt64(&c.total)
	success := atomic.LoadInt64(&c.success)
	failed := atomic.LoadInt64(&c.failed)

	summary := domain.LoadTestSummary{
		TestDuration:       elapsed.Seconds(),
		TotalRequests:      total,
		SuccessfulRequests: success,
		FailedRequests:     failed,
		ConcurrentUsers:    users,
	}
	if elapsed > 0 {
		summary.RequestsPerSecond = float64(total) / elapsed.Seconds()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hist.TotalCount() > 0 {
		summary.ResponseTime = domain.ResponseTimeStats{
			Min:  float64(c.hist.Min()) / 1000.0,
			Max:  float64(c.hist.Max()) / 1000.0,
			Mean: c.hist.Mean() / 1000.0,
			P95:  float64(c.hist.ValueAtQuantile(95)) / 1000.0,
			P99:  float64(c.hist.ValueAtQuantile(99)) / 1000.0,
		}
	}

	if len(c.errKinds) > 0 {
		kinds := make([]string, 0, len(c.errKinds))
		for kind := range c.errKinds {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			summary.Errors = append(summary.Errors, domain.ErrorDetail{
				Name:  kind,
				Count: c.errKinds[kind],
			})
		}
	}

	return summary
}
