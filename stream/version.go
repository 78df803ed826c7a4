package stream

import (
	"io"

	"github.com/byteio/go-byteio/timeout"
)

// Version identifies a backend revision. Majors are incompatible;
// minors only ever add capabilities on top of lower ones.
type Version struct {
	Major uint32
	Minor uint32
}

const (
	// CurrentMajor is the one table layout this contract speaks.
	CurrentMajor = 1

	// Minor revisions of major 1, cumulative.
	MinorBase  = 0 // Read, Write, Close
	MinorTimed = 1 // + TimedRead, TimedWrite
)

// Backend is the sequential transfer surface every stream provides.
type Backend interface {
	io.Reader
	io.Writer
	Close() error
}

// TimedBackend bounds single transfers by a budget. A nil budget means
// block indefinitely; a zero one polls.
type TimedBackend interface {
	TimedRead(p []byte, tm *timeout.Timeout) (int, error)
	TimedWrite(p []byte, tm *timeout.Timeout) (int, error)
}
