package stream

import (
	"github.com/byteio/go-byteio/internal/xfer"
	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/timeout"
)

// The completion operations share the loop kernels with package
// object; here the step offset is simply ignored, the stream's own
// cursor doing the advancing.

func (s *Stream) stepRead() xfer.Step {
	return func(_ int, p []byte) (int, error) {
		return s.read(p)
	}
}

func (s *Stream) stepWrite() xfer.Step {
	return func(_ int, p []byte) (int, error) {
		return s.write(p)
	}
}

func (s *Stream) timedStepRead() xfer.TimedStep {
	if s.timed == nil {
		return nil
	}
	return func(_ int, p []byte, tm *timeout.Timeout) (int, error) {
		return s.timedRead(p, tm)
	}
}

func (s *Stream) timedStepWrite() xfer.TimedStep {
	if s.timed == nil {
		return nil
	}
	return func(_ int, p []byte, tm *timeout.Timeout) (int, error) {
		return s.timedWrite(p, tm)
	}
}

func (s *Stream) incomplete(op ioerr.Op) error {
	return strErr(op, ioerr.CompTransfer, ioerr.StateIncomplete)
}

func (s *Stream) checkReadExactly(p []byte) (done bool, err error) {
	if s == nil {
		return false, strErr(ioerr.OpReading, ioerr.CompSelf, ioerr.StateNull)
	}
	if !s.canRead {
		return false, strErr(ioerr.OpReading, ioerr.CompCapability, ioerr.StateWriteOnly)
	}
	if len(p) == 0 {
		return true, nil
	}
	return false, s.dispatch(ioerr.OpReading)
}

// ReadAll fills p as far as the stream allows. An error after any
// progress is discarded in favor of the byte total; only a zero-total
// outcome reports it.
func (s *Stream) ReadAll(p []byte) (int, error) {
	if err := s.checkRead(p); err != nil {
		return 0, err
	}
	return xfer.ReadAll(p, s.stepRead(), s.timedStepRead())
}

// TimedReadAll is ReadAll with the caller's budget on the first read;
// follow-ups never wait.
func (s *Stream) TimedReadAll(p []byte, tm *timeout.Timeout) (int, error) {
	if err := s.checkRead(p); err != nil {
		return 0, err
	}
	if s.timed == nil {
		if tm == nil {
			return xfer.ReadAll(p, s.stepRead(), nil)
		}
		return 0, strErr(ioerr.OpReading, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return xfer.TimedReadAll(p, tm, s.timedStepRead())
}

// ReadExactly reads exactly len(p) bytes or fails with an
// incomplete-transfer error; it never reports a short success.
func (s *Stream) ReadExactly(p []byte) error {
	done, err := s.checkReadExactly(p)
	if done || err != nil {
		return err
	}
	return xfer.ReadExactly(p, s.stepRead(), s.incomplete(ioerr.OpReading))
}

// TimedReadExactly is ReadExactly under a caller budget shared by
// every iteration; with a real budget a timeout is final.
func (s *Stream) TimedReadExactly(p []byte, tm *timeout.Timeout) error {
	done, err := s.checkReadExactly(p)
	if done || err != nil {
		return err
	}
	if s.timed == nil {
		if tm == nil {
			return xfer.ReadExactly(p, s.stepRead(), s.incomplete(ioerr.OpReading))
		}
		return strErr(ioerr.OpReading, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return xfer.TimedReadExactly(p, tm, s.timedStepRead(), s.incomplete(ioerr.OpReading))
}

// WriteAll writes all of p. The achieved total is always reported;
// anything short of len(p) carries an error, a stall without one
// resolving to incomplete.
func (s *Stream) WriteAll(p []byte) (int, error) {
	done, err := s.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	return xfer.WriteAll(p, s.stepWrite(), s.timedStepWrite(), s.incomplete(ioerr.OpWriting))
}

// TimedWriteAll is WriteAll with the caller's budget on the first
// write; follow-ups never wait.
func (s *Stream) TimedWriteAll(p []byte, tm *timeout.Timeout) (int, error) {
	done, err := s.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	if s.timed == nil {
		if tm == nil {
			return xfer.WriteAll(p, s.stepWrite(), nil, s.incomplete(ioerr.OpWriting))
		}
		return 0, strErr(ioerr.OpWriting, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return xfer.TimedWriteAll(p, tm, s.timedStepWrite(), s.incomplete(ioerr.OpWriting))
}
