package object

import (
	"github.com/byteio/go-byteio/internal/xfer"
	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/timeout"
)

// The completion operations turn the partial-transfer primitives into
// all-or-error calls. Policy lives in internal/xfer; this file binds
// the loops to positional steps.

func (o *Object) stepRead(pos int64) xfer.Step {
	return func(off int, p []byte) (int, error) {
		return o.readAt(p, pos+int64(off))
	}
}

func (o *Object) stepWrite(pos int64) xfer.Step {
	return func(off int, p []byte) (int, error) {
		return o.writeAt(p, pos+int64(off))
	}
}

// timedStepRead is nil below MinorTimed so the loops fall back to the
// plain primitive.
func (o *Object) timedStepRead(pos int64) xfer.TimedStep {
	if o.timed == nil {
		return nil
	}
	return func(off int, p []byte, tm *timeout.Timeout) (int, error) {
		return o.timedReadAt(p, pos+int64(off), tm)
	}
}

func (o *Object) timedStepWrite(pos int64) xfer.TimedStep {
	if o.timed == nil {
		return nil
	}
	return func(off int, p []byte, tm *timeout.Timeout) (int, error) {
		return o.timedWriteAt(p, pos+int64(off), tm)
	}
}

func (o *Object) incomplete(op ioerr.Op) error {
	return objErr(op, ioerr.CompTransfer, ioerr.StateIncomplete)
}

// checkReadExactly mirrors checkRead except that a zero-length request
// is an immediate success rather than an insufficient buffer.
func (o *Object) checkReadExactly(p []byte) (done bool, err error) {
	if o == nil {
		return false, objErr(ioerr.OpReading, ioerr.CompSelf, ioerr.StateNull)
	}
	if !o.canRead {
		return false, objErr(ioerr.OpReading, ioerr.CompCapability, ioerr.StateWriteOnly)
	}
	if len(p) == 0 {
		return true, nil
	}
	return false, o.dispatch(ioerr.OpReading)
}

// ReadAllAt fills p from pos as far as the input allows. An error after
// any progress is discarded in favor of the byte total; only a
// zero-total outcome reports it.
func (o *Object) ReadAllAt(p []byte, pos int64) (int, error) {
	if err := o.checkRead(p); err != nil {
		return 0, err
	}
	return xfer.ReadAll(p, o.stepRead(pos), o.timedStepRead(pos))
}

// TimedReadAllAt is ReadAllAt with the caller's budget on the first
// read; follow-ups never wait.
func (o *Object) TimedReadAllAt(p []byte, pos int64, tm *timeout.Timeout) (int, error) {
	if err := o.checkRead(p); err != nil {
		return 0, err
	}
	if o.timed == nil {
		if tm == nil {
			return xfer.ReadAll(p, o.stepRead(pos), nil)
		}
		return 0, objErr(ioerr.OpReading, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return xfer.TimedReadAll(p, tm, o.timedStepRead(pos))
}

// ReadExactlyAt reads exactly len(p) bytes from pos or fails with an
// incomplete-transfer error; it never reports a short success.
func (o *Object) ReadExactlyAt(p []byte, pos int64) error {
	done, err := o.checkReadExactly(p)
	if done || err != nil {
		return err
	}
	return xfer.ReadExactly(p, o.stepRead(pos), o.incomplete(ioerr.OpReading))
}

// TimedReadExactlyAt is ReadExactlyAt under a caller budget shared by
// every iteration; with a real budget a timeout is final.
func (o *Object) TimedReadExactlyAt(p []byte, pos int64, tm *timeout.Timeout) error {
	done, err := o.checkReadExactly(p)
	if done || err != nil {
		return err
	}
	if o.timed == nil {
		if tm == nil {
			return xfer.ReadExactly(p, o.stepRead(pos), o.incomplete(ioerr.OpReading))
		}
		return objErr(ioerr.OpReading, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return xfer.TimedReadExactly(p, tm, o.timedStepRead(pos), o.incomplete(ioerr.OpReading))
}

// WriteAllAt writes all of p at pos. The achieved total is always
// reported; anything short of len(p) carries an error, a stall without
// one resolving to incomplete.
func (o *Object) WriteAllAt(p []byte, pos int64) (int, error) {
	done, err := o.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	return xfer.WriteAll(p, o.stepWrite(pos), o.timedStepWrite(pos), o.incomplete(ioerr.OpWriting))
}

// TimedWriteAllAt is WriteAllAt with the caller's budget on the first
// write; follow-ups never wait.
func (o *Object) TimedWriteAllAt(p []byte, pos int64, tm *timeout.Timeout) (int, error) {
	done, err := o.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	if o.timed == nil {
		if tm == nil {
			return xfer.WriteAll(p, o.stepWrite(pos), nil, o.incomplete(ioerr.OpWriting))
		}
		return 0, objErr(ioerr.OpWriting, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return xfer.TimedWriteAll(p, tm, o.timedStepWrite(pos), o.incomplete(ioerr.OpWriting))
}
