package loadtest

import (
	"time"
)

// Schedule converts a user count and spawn rate into activation
// offsets relative to run start, one per virtual user. The k-th user
// (0-indexed) activates at k/spawnRate seconds, giving a linear ramp of
// spawnRate users per second in index order. The schedule is a pure
// function of its inputs, so identical parameters always produce the
// same ramp.
//
// Offsets past the test duration are still produced: the harness never
// trims the requested population, a late user simply gets near-zero
// active time.
func Schedule(users int, spawnRate float64) []time.Duration {
	if users <= 0 || spawnRate <= 0 {
		return nil
	}
	interval := float64(time.Second) / spawnRate
	offsets := make([]time.Duration, users)
	for k := range offsets {
		offsets[k] = time.Duration(float64(k) * interval)
	}
	return offsets
}
