// Package testhelper provides scripted contract backends, used by
// tests to stub out real storage and fault-inject partial transfers.
package testhelper

import (
	"os"

	"github.com/byteio/go-byteio/object"
	"github.com/byteio/go-byteio/timeout"
)

type reader func(p []byte, off int64) (int, error)
type writer func(p []byte, off int64) (int, error)
type timedReader func(p []byte, off int64, tm *timeout.Timeout) (int, error)
type timedWriter func(p []byte, off int64, tm *timeout.Timeout) (int, error)

// ObjectImpl implements object.Backend with pluggable behavior: each
// non-nil field overrides the matching operation, everything else
// reports a bland success.
type ObjectImpl struct {
	Reader         reader
	Writer         writer
	Sizer          func() (int64, error)
	Truncater      func(size int64) error
	RandomAccesser func() error
	Closer         func() error
}

var _ object.Backend = (*ObjectImpl)(nil)

func (f *ObjectImpl) ReadAt(p []byte, off int64) (int, error) {
	if f.Reader == nil {
		return 0, nil
	}
	return f.Reader(p, off)
}

func (f *ObjectImpl) WriteAt(p []byte, off int64) (int, error) {
	if f.Writer == nil {
		return len(p), nil
	}
	return f.Writer(p, off)
}

func (f *ObjectImpl) Size() (int64, error) {
	if f.Sizer == nil {
		return 0, nil
	}
	return f.Sizer()
}

func (f *ObjectImpl) Truncate(size int64) error {
	if f.Truncater == nil {
		return nil
	}
	return f.Truncater(size)
}

func (f *ObjectImpl) Sys() (*os.File, int64, bool) {
	return nil, 0, false
}

func (f *ObjectImpl) RandomAccess() error {
	if f.RandomAccesser == nil {
		return nil
	}
	return f.RandomAccesser()
}

func (f *ObjectImpl) Close() error {
	if f.Closer == nil {
		return nil
	}
	return f.Closer()
}

// KindedObjectImpl adds the MinorKind capability.
type KindedObjectImpl struct {
	ObjectImpl
	Kinded func() object.Kind
}

var _ object.Kinder = (*KindedObjectImpl)(nil)

func (f *KindedObjectImpl) Kind() object.Kind {
	if f.Kinded == nil {
		return object.KindFile
	}
	return f.Kinded()
}

// TimedObjectImpl adds the MinorTimed capability. Unset timed fields
// fall through to the plain operations, ignoring the budget.
type TimedObjectImpl struct {
	KindedObjectImpl
	TimedReader timedReader
	TimedWriter timedWriter
}

var _ object.TimedBackend = (*TimedObjectImpl)(nil)

func (f *TimedObjectImpl) TimedReadAt(p []byte, off int64, tm *timeout.Timeout) (int, error) {
	if f.TimedReader == nil {
		return f.ReadAt(p, off)
	}
	return f.TimedReader(p, off, tm)
}

func (f *TimedObjectImpl) TimedWriteAt(p []byte, off int64, tm *timeout.Timeout) (int, error) {
	if f.TimedWriter == nil {
		return f.WriteAt(p, off)
	}
	return f.TimedWriter(p, off, tm)
}
