// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"time"

	"github.com/cockroachdb/physopt/pkg/util/syncutil"
)

// EveryN rate limits a spammy log message to one per interval and counts
// the calls it turned away in between. The zero value allows every call.
type EveryN struct {
	interval time.Duration

	mu struct {
		syncutil.Mutex
		last       time.Time
		suppressed int
	}
}

// Every returns an EveryN allowing one message per interval.
func Every(interval time.Duration) EveryN {
	return EveryN{interval: interval}
}

// ShouldLog returns true if the message should be logged now, along with the
// number of calls suppressed since it was last logged. Messages are never
// suppressed at verbosity 2 or higher.
func (e *EveryN) ShouldLog() (bool, int) {
	return e.shouldLog(time.Now())
}

func (e *EveryN) shouldLog(now time.Time) (bool, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !VDepth(2 /* level */, 2 /* depth */) && now.Sub(e.mu.last) < e.interval {
		e.mu.suppressed++
		return false, 0
	}
	suppressed := e.mu.suppressed
	e.mu.last, e.mu.suppressed = now, 0
	return true, suppressed
}
