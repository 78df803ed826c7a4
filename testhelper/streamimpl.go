package testhelper

import (
	"github.com/byteio/go-byteio/stream"
	"github.com/byteio/go-byteio/timeout"
)

// StreamImpl implements stream.Backend with pluggable behavior, in the
// same spirit as ObjectImpl.
type StreamImpl struct {
	Reader func(p []byte) (int, error)
	Writer func(p []byte) (int, error)
	Closer func() error
}

var _ stream.Backend = (*StreamImpl)(nil)
var _ stream.TimedBackend = (*TimedStreamImpl)(nil)

func (f *StreamImpl) Read(p []byte) (int, error) {
	if f.Reader == nil {
		return 0, nil
	}
	return f.Reader(p)
}

func (f *StreamImpl) Write(p []byte) (int, error) {
	if f.Writer == nil {
		return len(p), nil
	}
	return f.Writer(p)
}

func (f *StreamImpl) Close() error {
	if f.Closer == nil {
		return nil
	}
	return f.Closer()
}

// TimedStreamImpl adds the timed stream capability. Unset timed fields
// fall through to the plain operations, ignoring the budget.
type TimedStreamImpl struct {
	StreamImpl
	TimedReader func(p []byte, tm *timeout.Timeout) (int, error)
	TimedWriter func(p []byte, tm *timeout.Timeout) (int, error)
}

func (f *TimedStreamImpl) TimedRead(p []byte, tm *timeout.Timeout) (int, error) {
	if f.TimedReader == nil {
		return f.Read(p)
	}
	return f.TimedReader(p, tm)
}

func (f *TimedStreamImpl) TimedWrite(p []byte, tm *timeout.Timeout) (int, error) {
	if f.TimedWriter == nil {
		return f.Write(p)
	}
	return f.TimedWriter(p, tm)
}
