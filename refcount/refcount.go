// Package refcount provides the atomic shared-ownership counter used by
// every handle in this module. A Count only moves through Add and Drop;
// the transition to zero is reported exactly once, so the owner of that
// transition runs teardown without any further coordination.
package refcount

import "sync/atomic"

// maxCount is the bound past which Add refuses to move the counter.
const maxCount = 1<<31 - 1

// Action tells the caller what a Count transition requires of it.
type Action int

const (
	// Hold means the count moved and the object stays alive.
	Hold Action = iota
	// Whack means the count reached zero: destroy the object now.
	Whack
	// Limit means an increment was refused at the representable bound.
	Limit
	// Negative means the count was already at or below zero, a
	// use-after-free symptom.
	Negative
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "hold"
	case Whack:
		return "whack"
	case Limit:
		return "limit"
	case Negative:
		return "negative"
	}
	return "unknown"
}

// Count is an atomic reference counter. The zero value is dead; call
// Init before sharing the handle.
type Count struct {
	n atomic.Int64
}

// Init sets the starting count. Constructors call it with 1.
func (c *Count) Init(n int64) {
	c.n.Store(n)
}

// Add takes one more reference.
func (c *Count) Add() Action {
	for {
		cur := c.n.Load()
		switch {
		case cur <= 0:
			return Negative
		case cur >= maxCount:
			return Limit
		}
		if c.n.CompareAndSwap(cur, cur+1) {
			return Hold
		}
	}
}

// Drop lets one reference go. Exactly one caller observes Whack for a
// handle that reaches zero, no matter how many goroutines race here.
func (c *Count) Drop() Action {
	for {
		cur := c.n.Load()
		if cur <= 0 {
			return Negative
		}
		if c.n.CompareAndSwap(cur, cur-1) {
			if cur == 1 {
				return Whack
			}
			return Hold
		}
	}
}

// Value reports the current count. It may be stale by the time the
// caller inspects it; diagnostic use only.
func (c *Count) Value() int64 {
	return c.n.Load()
}
