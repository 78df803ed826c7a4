// Package sub provides windowed views over an existing I/O object. A
// sub-object exposes size bytes starting at base, inherits the
// parent's access flags, and holds a reference on the parent for its
// own lifetime, so the parent cannot be torn down underneath it.
package sub

import (
	"os"

	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/object"
)

type subBackend struct {
	parent *object.Object
	base   int64
	size   int64
}

var _ object.Backend = (*subBackend)(nil)
var _ object.Kinder = (*subBackend)(nil)

func subErr(op ioerr.Op, comp ioerr.Comp, state ioerr.State) *ioerr.Error {
	return ioerr.New(ioerr.SubsysIO, ioerr.TargetObject, op, comp, state)
}

func (s *subBackend) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, subErr(ioerr.OpReading, ioerr.CompParam, ioerr.StateInvalid)
	}
	if off >= s.size {
		return 0, nil
	}
	if max := s.size - off; int64(len(p)) > max {
		p = p[:max]
	}
	return s.parent.ReadAt(p, s.base+off)
}

func (s *subBackend) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, subErr(ioerr.OpWriting, ioerr.CompParam, ioerr.StateInvalid)
	}
	// a fixed window cannot grow, so running off its end is an error
	// rather than an extension
	if off >= s.size {
		return 0, subErr(ioerr.OpWriting, ioerr.CompRange, ioerr.StateExcessive)
	}
	if max := s.size - off; int64(len(p)) > max {
		p = p[:max]
	}
	return s.parent.WriteAt(p, s.base+off)
}

func (s *subBackend) Size() (int64, error) {
	return s.size, nil
}

func (s *subBackend) Truncate(int64) error {
	return subErr(ioerr.OpResizing, ioerr.CompInterface, ioerr.StateUnsupported)
}

func (s *subBackend) Sys() (*os.File, int64, bool) {
	f, off, ok := s.parent.Sys()
	if !ok {
		return nil, 0, false
	}
	return f, off + s.base, true
}

func (s *subBackend) RandomAccess() error {
	return s.parent.RandomAccess()
}

func (s *subBackend) Kind() object.Kind {
	return s.parent.Kind()
}

func (s *subBackend) Close() error {
	return s.parent.Release()
}

// New returns a view over size bytes of parent starting at base. The
// window may extend past the parent's current end; reads there simply
// come up empty. The view is released like any other object, and the
// last release lets go of the parent.
func New(parent *object.Object, base, size int64) (*object.Object, error) {
	if parent == nil {
		return nil, subErr(ioerr.OpConstructing, ioerr.CompParam, ioerr.StateNull)
	}
	if base < 0 || size < 0 {
		return nil, subErr(ioerr.OpConstructing, ioerr.CompParam, ioerr.StateInvalid)
	}
	if err := parent.RandomAccess(); err != nil {
		return nil, err
	}
	if err := parent.AddRef(); err != nil {
		return nil, err
	}
	o := &object.Object{}
	ver := object.Version{Major: object.CurrentMajor, Minor: object.MinorKind}
	be := &subBackend{parent: parent, base: base, size: size}
	if err := object.Init(o, be, ver, parent.Readable(), parent.Writable()); err != nil {
		_ = parent.Release()
		return nil, err
	}
	return o, nil
}
