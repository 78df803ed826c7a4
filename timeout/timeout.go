// Package timeout implements the wait budget handed to the timed I/O
// operations. A nil *Timeout means "block indefinitely"; a zero budget
// means "poll once, never wait". The absolute deadline is fixed the
// first time the budget is consulted, so one Timeout threaded through a
// retry loop caps the total wait rather than each attempt.
package timeout

import "time"

// Timeout is a bounded wait budget.
type Timeout struct {
	d        time.Duration
	deadline time.Time
}

// New returns a budget of d. Negative durations clamp to zero.
func New(d time.Duration) *Timeout {
	if d < 0 {
		d = 0
	}
	return &Timeout{d: d}
}

// NonBlocking returns a zero budget.
func NonBlocking() *Timeout {
	return New(0)
}

// Prepare fixes the absolute deadline now instead of on first use.
// Callers sharing one budget across several waits call it up front.
func (t *Timeout) Prepare() {
	if t.deadline.IsZero() {
		t.deadline = time.Now().Add(t.d)
	}
}

// Duration reports the budget as requested, regardless of consumption.
func (t *Timeout) Duration() time.Duration {
	return t.d
}

// Remaining reports the unspent part of the budget, never below zero.
func (t *Timeout) Remaining() time.Duration {
	t.Prepare()
	if r := time.Until(t.deadline); r > 0 {
		return r
	}
	return 0
}

// Expired reports whether the budget is spent.
func (t *Timeout) Expired() bool {
	return t.Remaining() <= 0
}
