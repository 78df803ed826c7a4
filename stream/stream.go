// Package stream implements the sequential byte-I/O contract: the
// cursor-based sibling of package object, one reference-counted
// surface over backends that deliver bytes in order (sockets, pipes,
// in-process queues). There is no positioning; each read or write
// moves an implicit cursor.
package stream

import (
	"errors"
	"io"

	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/refcount"
	"github.com/byteio/go-byteio/timeout"
)

// Stream is the sequential byte-I/O contract over one Backend. The
// zero value is dead; Init wires a backend in, validates the declared
// version and starts the reference count at 1.
type Stream struct {
	be    Backend
	timed TimedBackend // non-nil exactly when ver.Minor >= MinorTimed
	ver   Version

	canRead  bool
	canWrite bool

	refs refcount.Count
}

func strErr(op ioerr.Op, comp ioerr.Comp, state ioerr.State) *ioerr.Error {
	return ioerr.New(ioerr.SubsysNet, ioerr.TargetStream, op, comp, state)
}

// Init validates the declared version against the capabilities be
// actually implements and initializes s. The access flags never change
// afterward.
func Init(s *Stream, be Backend, ver Version, canRead, canWrite bool) error {
	if s == nil {
		return strErr(ioerr.OpConstructing, ioerr.CompSelf, ioerr.StateNull)
	}
	if be == nil {
		return strErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateNull)
	}
	switch {
	case ver.Major == 0:
		return strErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateInvalid)
	case ver.Major != CurrentMajor, ver.Minor > MinorTimed:
		return strErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	s.timed = nil
	if ver.Minor >= MinorTimed {
		tb, ok := be.(TimedBackend)
		if !ok {
			return strErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateNull)
		}
		s.timed = tb
	}
	s.be = be
	s.ver = ver
	s.canRead = canRead
	s.canWrite = canWrite
	s.refs.Init(1)
	return nil
}

// dispatch is the call-time version gate, as in package object.
func (s *Stream) dispatch(op ioerr.Op) error {
	if s.ver.Major != CurrentMajor {
		return strErr(op, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return nil
}

// Version reports the revision declared at Init.
func (s *Stream) Version() Version {
	if s == nil {
		return Version{}
	}
	return s.ver
}

// Readable reports the fixed read capability flag.
func (s *Stream) Readable() bool {
	return s != nil && s.canRead
}

// Writable reports the fixed write capability flag.
func (s *Stream) Writable() bool {
	return s != nil && s.canWrite
}

// AddRef takes one more reference. A nil receiver is an accepted no-op.
func (s *Stream) AddRef() error {
	if s == nil {
		return nil
	}
	switch s.refs.Add() {
	case refcount.Limit:
		return strErr(ioerr.OpAttaching, ioerr.CompRange, ioerr.StateExcessive)
	case refcount.Negative:
		return strErr(ioerr.OpAttaching, ioerr.CompSelf, ioerr.StateInvalid)
	}
	return nil
}

// Release lets one reference go; the final one tears the stream down.
// A nil receiver is an accepted no-op.
func (s *Stream) Release() error {
	if s == nil {
		return nil
	}
	switch s.refs.Drop() {
	case refcount.Whack:
		return s.Destroy()
	case refcount.Negative:
		return strErr(ioerr.OpReleasing, ioerr.CompRange, ioerr.StateExcessive)
	}
	return nil
}

// Destroy runs the backend teardown immediately, bypassing the count.
func (s *Stream) Destroy() error {
	if s == nil {
		return strErr(ioerr.OpDestroying, ioerr.CompSelf, ioerr.StateNull)
	}
	if err := s.dispatch(ioerr.OpDestroying); err != nil {
		return err
	}
	return s.be.Close()
}

// Read reads into p with one backend call. Short counts are legal; a
// count of 0 means nothing available or end of stream.
func (s *Stream) Read(p []byte) (int, error) {
	if err := s.checkRead(p); err != nil {
		return 0, err
	}
	return s.read(p)
}

// TimedRead is Read bounded by tm. A backend below MinorTimed accepts
// only a nil tm, which degrades to the plain read; a real budget it
// cannot honor is a version error, never a silent downgrade.
func (s *Stream) TimedRead(p []byte, tm *timeout.Timeout) (int, error) {
	if err := s.checkRead(p); err != nil {
		return 0, err
	}
	return s.timedRead(p, tm)
}

// Write writes p with one backend call. An empty (or nil) p is an
// accepted no-op.
func (s *Stream) Write(p []byte) (int, error) {
	done, err := s.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	return s.write(p)
}

// TimedWrite is Write bounded by tm, with the same version rule as
// TimedRead.
func (s *Stream) TimedWrite(p []byte, tm *timeout.Timeout) (int, error) {
	done, err := s.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	return s.timedWrite(p, tm)
}

// checkRead runs the read-family preconditions in contract order: the
// capability refusal comes before any buffer inspection.
func (s *Stream) checkRead(p []byte) error {
	if s == nil {
		return strErr(ioerr.OpReading, ioerr.CompSelf, ioerr.StateNull)
	}
	if !s.canRead {
		return strErr(ioerr.OpReading, ioerr.CompCapability, ioerr.StateWriteOnly)
	}
	if p == nil {
		return strErr(ioerr.OpReading, ioerr.CompBuffer, ioerr.StateNull)
	}
	if len(p) == 0 {
		return strErr(ioerr.OpReading, ioerr.CompBuffer, ioerr.StateInsufficient)
	}
	return s.dispatch(ioerr.OpReading)
}

func (s *Stream) checkWrite(p []byte) (done bool, err error) {
	if s == nil {
		return false, strErr(ioerr.OpWriting, ioerr.CompSelf, ioerr.StateNull)
	}
	if !s.canWrite {
		return false, strErr(ioerr.OpWriting, ioerr.CompCapability, ioerr.StateReadOnly)
	}
	if len(p) == 0 {
		return true, nil
	}
	return false, s.dispatch(ioerr.OpWriting)
}

// read is the dispatch-level single read with io.EOF normalized to the
// zero-count end-of-stream signal.
func (s *Stream) read(p []byte) (int, error) {
	n, err := s.be.Read(p)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return 0, err
	}
	return n, nil
}

func (s *Stream) timedRead(p []byte, tm *timeout.Timeout) (int, error) {
	if s.timed == nil {
		if tm == nil {
			return s.read(p)
		}
		return 0, strErr(ioerr.OpReading, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	n, err := s.timed.TimedRead(p, tm)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return 0, err
	}
	return n, nil
}

func (s *Stream) write(p []byte) (int, error) {
	n, err := s.be.Write(p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Stream) timedWrite(p []byte, tm *timeout.Timeout) (int, error) {
	if s.timed == nil {
		if tm == nil {
			return s.write(p)
		}
		return 0, strErr(ioerr.OpWriting, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	n, err := s.timed.TimedWrite(p, tm)
	if err != nil {
		return 0, err
	}
	return n, nil
}
