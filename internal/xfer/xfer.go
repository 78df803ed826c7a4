// Package xfer implements the transfer-completion loops shared by the
// positional object contract and the sequential stream contract. The
// contracts pass their primitive operations in as step functions with
// the base position (if any) baked in; the loops own the accumulation
// and retry policy.
//
// Two policies coexist and must not be unified: the All loops treat any
// forward progress as success and discard errors that arrive after it,
// while the Exactly loops accept nothing short of the full request.
package xfer

import (
	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/timeout"
)

// Step issues one primitive transfer into p, which begins off bytes
// into the caller's original buffer.
type Step func(off int, p []byte) (int, error)

// TimedStep is Step bounded by tm; a nil tm blocks indefinitely.
type TimedStep func(off int, p []byte, tm *timeout.Timeout) (int, error)

// ReadAll reads as much of p as one plain read plus follow-ups deliver.
// The loop only continues after a first read that made partial
// progress; follow-ups never wait when a timed step is available.
// Errors after any progress are discarded in favor of the byte total;
// only a zero-total outcome reports an error.
func ReadAll(p []byte, read Step, timedRead TimedStep) (int, error) {
	n, err := read(0, p)
	if err != nil {
		return 0, err
	}
	if n == 0 || n >= len(p) {
		return n, nil
	}
	total := n
	for total < len(p) {
		var m int
		if timedRead != nil {
			m, err = timedRead(total, p[total:], timeout.NonBlocking())
		} else {
			m, err = read(total, p[total:])
		}
		if err != nil || m == 0 {
			break
		}
		total += m
	}
	return total, nil
}

// TimedReadAll is ReadAll with the caller's budget on the first read;
// follow-ups never wait.
func TimedReadAll(p []byte, tm *timeout.Timeout, timedRead TimedStep) (int, error) {
	n, err := timedRead(0, p, tm)
	if err != nil {
		return 0, err
	}
	if n == 0 || n >= len(p) {
		return n, nil
	}
	total := n
	for total < len(p) {
		m, err := timedRead(total, p[total:], timeout.NonBlocking())
		if err != nil || m == 0 {
			break
		}
		total += m
	}
	return total, nil
}

// ReadExactly loops until all of p is read. A zero-byte read before
// completion resolves to incomplete. Timeout errors from interior
// iterations are retried: the caller asked for an unbounded call, so a
// bounded attempt inside it is not final.
func ReadExactly(p []byte, read Step, incomplete error) error {
	for total := 0; total < len(p); {
		n, err := read(total, p[total:])
		if err != nil {
			if ioerr.IsTimeout(err) {
				continue
			}
			return err
		}
		if n == 0 {
			return incomplete
		}
		total += n
	}
	return nil
}

// TimedReadExactly is ReadExactly under a caller budget shared by every
// iteration. With a real budget a timeout is final; it is retried only
// when tm is nil.
func TimedReadExactly(p []byte, tm *timeout.Timeout, timedRead TimedStep, incomplete error) error {
	if tm != nil {
		tm.Prepare()
	}
	for total := 0; total < len(p); {
		n, err := timedRead(total, p[total:], tm)
		if err != nil {
			if tm == nil && ioerr.IsTimeout(err) {
				continue
			}
			return err
		}
		if n == 0 {
			return incomplete
		}
		total += n
	}
	return nil
}

// WriteAll pushes all of p, continuing past a partial first write with
// non-waiting (or plain) follow-ups. The achieved total is always
// reported. Success requires the full length; a stalled loop without a
// lower-level error resolves to incomplete, and unlike ReadAll a late
// error is surfaced alongside the partial total.
func WriteAll(p []byte, write Step, timedWrite TimedStep, incomplete error) (int, error) {
	n, err := write(0, p)
	if err != nil {
		return 0, err
	}
	total := n
	if n != 0 && n < len(p) {
		for total < len(p) {
			var m int
			if timedWrite != nil {
				m, err = timedWrite(total, p[total:], timeout.NonBlocking())
			} else {
				m, err = write(total, p[total:])
			}
			if err != nil || m == 0 {
				break
			}
			total += m
		}
	}
	switch {
	case total == len(p):
		return total, nil
	case err != nil:
		return total, err
	}
	return total, incomplete
}

// TimedWriteAll is WriteAll with the caller's budget on the first
// write; follow-ups never wait.
func TimedWriteAll(p []byte, tm *timeout.Timeout, timedWrite TimedStep, incomplete error) (int, error) {
	n, err := timedWrite(0, p, tm)
	if err != nil {
		return 0, err
	}
	total := n
	if n != 0 && n < len(p) {
		for total < len(p) {
			var m int
			m, err = timedWrite(total, p[total:], timeout.NonBlocking())
			if err != nil || m == 0 {
				break
			}
			total += m
		}
	}
	switch {
	case total == len(p):
		return total, nil
	case err != nil:
		return total, err
	}
	return total, incomplete
}
