// Package file provides I/O objects backed by files on the local
// filesystem, including devices and named pipes.
package file

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/byteio/go-byteio/object"
)

type fileBackend struct {
	f *os.File
}

var _ object.Backend = (*fileBackend)(nil)
var _ object.Kinder = (*fileBackend)(nil)

func (b *fileBackend) ReadAt(p []byte, off int64) (int, error) {
	return b.f.ReadAt(p, off)
}

func (b *fileBackend) WriteAt(p []byte, off int64) (int, error) {
	return b.f.WriteAt(p, off)
}

func (b *fileBackend) Size() (int64, error) {
	info, err := b.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (b *fileBackend) Truncate(size int64) error {
	return b.f.Truncate(size)
}

func (b *fileBackend) Sys() (*os.File, int64, bool) {
	return b.f, 0, true
}

func (b *fileBackend) RandomAccess() error {
	// pipes and character devices refuse to seek
	_, err := b.f.Seek(0, io.SeekCurrent)
	return err
}

func (b *fileBackend) Kind() object.Kind {
	info, err := b.f.Stat()
	if err != nil {
		return object.KindInvalid
	}
	return kindOf(info.Mode())
}

func (b *fileBackend) Close() error {
	return b.f.Close()
}

func kindOf(mode fs.FileMode) object.Kind {
	switch {
	case mode.IsRegular():
		return object.KindFile
	case mode&fs.ModeCharDevice != 0:
		return object.KindCharDev
	case mode&fs.ModeDevice != 0:
		return object.KindBlockDev
	case mode&fs.ModeNamedPipe != 0:
		return object.KindFIFO
	default:
		return object.KindInvalid
	}
}

func wrap(f *os.File, canRead, canWrite bool) (*object.Object, error) {
	o := &object.Object{}
	ver := object.Version{Major: object.CurrentMajor, Minor: object.MinorKind}
	if err := object.Init(o, &fileBackend{f: f}, ver, canRead, canWrite); err != nil {
		_ = f.Close()
		return nil, err
	}
	return o, nil
}

// New wraps an already open file. The caller keeps ownership of f on
// failure; on success the object owns it and the final release closes
// it.
func New(f *os.File, readOnly bool) (*object.Object, error) {
	o := &object.Object{}
	ver := object.Version{Major: object.CurrentMajor, Minor: object.MinorKind}
	if err := object.Init(o, &fileBackend{f: f}, ver, true, !readOnly); err != nil {
		return nil, err
	}
	return o, nil
}

// Open opens the file or device at path for reading only.
func Open(path string) (*object.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	return wrap(f, true, false)
}

// OpenReadWrite opens the file or device at path for reading and
// writing. The file must already exist.
func OpenReadWrite(path string) (*object.Object, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open %s read-write: %w", path, err)
	}
	return wrap(f, true, true)
}

// OpenWrite opens the file at path for writing only.
func OpenWrite(path string) (*object.Object, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open %s for writing: %w", path, err)
	}
	return wrap(f, false, true)
}

// Create creates (or truncates) a read-write file at path and extends
// it to size bytes.
func Create(path string, size int64) (*object.Object, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid size %d for %s", size, path)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, fmt.Errorf("could not create %s: %w", path, err)
	}
	if size > 0 {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("could not expand %s to size %d: %w", path, size, err)
		}
	}
	return wrap(f, true, true)
}
