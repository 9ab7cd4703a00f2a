package loadtest

import (
	"context"
	"errors"
	"time"
)

// virtualUser simulates one client. Once activated it issues chat
// requests back to back, recording each outcome with the run's
// collector, until the run's cancellation signal is observed. The
// signal is checked only between requests: an in-flight request always
// runs to completion or failure on its own, bounded by the target's
// per-request timeout, and is never forcibly aborted. Users run fully
// independently and never block on one another.
type virtualUser struct {
	target    Target
	collector *Collector
}

func (u *virtualUser) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		// The request runs on its own context: cancelling the run must
		// not cut off a request already in flight.
		err := u.target.SendChat(context.Background())
		u.collector.Record(outcomeFor(err, time.Since(start)))
	}
}

// outcomeFor classifies a target result into a recordable outcome.
func outcomeFor(err error, latency time.Duration) Outcome {
	if err == nil {
		return Outcome{Success: true, Latency: latency}
	}
	kind := KindTransport
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		kind = reqErr.Kind
	}
	return Outcome{Latency: latency, ErrorKind: kind}
}
