// Package mem provides I/O objects backed by a growable in-memory
// buffer. Writes beyond the current size extend it, with any gap
// zero-filled, and the timed operations never wait.
package mem

import (
	"errors"
	"os"

	"github.com/byteio/go-byteio/object"
	"github.com/byteio/go-byteio/timeout"
)

var errNegativeOffset = errors.New("negative offset")

type memBackend struct {
	buf []byte
}

var _ object.Backend = (*memBackend)(nil)
var _ object.Kinder = (*memBackend)(nil)
var _ object.TimedBackend = (*memBackend)(nil)

func (b *memBackend) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	if off >= int64(len(b.buf)) {
		return 0, nil
	}
	return copy(p, b.buf[off:]), nil
}

func (b *memBackend) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	end := off + int64(len(p))
	if end > int64(len(b.buf)) {
		b.grow(end)
	}
	return copy(b.buf[off:], p), nil
}

// grow extends the buffer to n bytes. Reclaimed capacity is zeroed so
// bytes discarded by an earlier shrink never resurface.
func (b *memBackend) grow(n int64) {
	if n <= int64(cap(b.buf)) {
		old := len(b.buf)
		b.buf = b.buf[:n]
		clear(b.buf[old:])
		return
	}
	b.buf = append(b.buf, make([]byte, n-int64(len(b.buf)))...)
}

func (b *memBackend) Size() (int64, error) {
	return int64(len(b.buf)), nil
}

func (b *memBackend) Truncate(size int64) error {
	if size < 0 {
		return errNegativeOffset
	}
	if size <= int64(len(b.buf)) {
		b.buf = b.buf[:size]
		return nil
	}
	b.grow(size)
	return nil
}

func (b *memBackend) Sys() (*os.File, int64, bool) {
	return nil, 0, false
}

func (b *memBackend) RandomAccess() error {
	return nil
}

func (b *memBackend) Kind() object.Kind {
	return object.KindMemory
}

func (b *memBackend) TimedReadAt(p []byte, off int64, _ *timeout.Timeout) (int, error) {
	return b.ReadAt(p, off)
}

func (b *memBackend) TimedWriteAt(p []byte, off int64, _ *timeout.Timeout) (int, error) {
	return b.WriteAt(p, off)
}

func (b *memBackend) Close() error {
	b.buf = nil
	return nil
}

func wrap(buf []byte, canRead, canWrite bool) (*object.Object, error) {
	o := &object.Object{}
	ver := object.Version{Major: object.CurrentMajor, Minor: object.MinorTimed}
	if err := object.Init(o, &memBackend{buf: buf}, ver, canRead, canWrite); err != nil {
		return nil, err
	}
	return o, nil
}

// New returns an empty read-write memory object.
func New() (*object.Object, error) {
	return wrap(nil, true, true)
}

// NewBuffer returns a read-write memory object seeded with a copy of
// data; later changes to data are not visible through the object.
func NewBuffer(data []byte) (*object.Object, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	return wrap(buf, true, true)
}

// NewReadOnly returns a read-only view over data without copying it.
// The caller must not mutate data for the lifetime of the object.
func NewReadOnly(data []byte) (*object.Object, error) {
	return wrap(data, true, false)
}

// NewWriteOnly returns an empty write-only memory object, useful as a
// byte sink.
func NewWriteOnly() (*object.Object, error) {
	return wrap(nil, false, true)
}
