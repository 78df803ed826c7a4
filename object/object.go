// Package object implements the random-access byte-I/O contract: one
// polymorphic, reference-counted surface over heterogeneous backends.
// Concrete backends hand the contract a Backend (plus optional
// capability interfaces) and a Version declaring which tiers they
// implement; callers then operate on the Object alone.
package object

import (
	"errors"
	"io"
	"os"

	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/refcount"
	"github.com/byteio/go-byteio/timeout"
)

// Owner is the optional collection back-reference that intercepts an
// object's final teardown: the last Release calls Teardown instead of
// Destroy, and the owner decides when Destroy actually runs. The
// reference is weak; registering an owner takes no count.
type Owner interface {
	Teardown(o *Object) error
}

// Object is the positional byte-I/O contract over one Backend. The
// zero value is dead; Init wires a backend in, validates the declared
// version and starts the reference count at 1.
type Object struct {
	be     Backend
	kinder Kinder       // non-nil exactly when ver.Minor >= MinorKind
	timed  TimedBackend // non-nil exactly when ver.Minor >= MinorTimed
	ver    Version

	owner Owner

	canRead  bool
	canWrite bool

	refs refcount.Count
}

func objErr(op ioerr.Op, comp ioerr.Comp, state ioerr.State) *ioerr.Error {
	return ioerr.New(ioerr.SubsysIO, ioerr.TargetObject, op, comp, state)
}

// Init validates the declared version against the capabilities be
// actually implements and initializes o. The access flags never change
// afterward.
func Init(o *Object, be Backend, ver Version, canRead, canWrite bool) error {
	if o == nil {
		return objErr(ioerr.OpConstructing, ioerr.CompSelf, ioerr.StateNull)
	}
	if be == nil {
		return objErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateNull)
	}
	switch {
	case ver.Major == 0:
		return objErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateInvalid)
	case ver.Major != CurrentMajor, ver.Minor > MinorTimed:
		return objErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	o.kinder = nil
	if ver.Minor >= MinorKind {
		k, ok := be.(Kinder)
		if !ok {
			return objErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateNull)
		}
		o.kinder = k
	}
	o.timed = nil
	if ver.Minor >= MinorTimed {
		tb, ok := be.(TimedBackend)
		if !ok {
			return objErr(ioerr.OpConstructing, ioerr.CompInterface, ioerr.StateNull)
		}
		o.timed = tb
	}
	o.be = be
	o.ver = ver
	o.owner = nil
	o.canRead = canRead
	o.canWrite = canWrite
	o.refs.Init(1)
	return nil
}

// dispatch is the call-time version gate: an object whose major the
// contract does not recognize refuses every operation rather than
// degrading.
func (o *Object) dispatch(op ioerr.Op) error {
	if o.ver.Major != CurrentMajor {
		return objErr(op, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	return nil
}

// Version reports the revision declared at Init.
func (o *Object) Version() Version {
	if o == nil {
		return Version{}
	}
	return o.ver
}

// Readable reports the fixed read capability flag.
func (o *Object) Readable() bool {
	return o != nil && o.canRead
}

// Writable reports the fixed write capability flag.
func (o *Object) Writable() bool {
	return o != nil && o.canWrite
}

// AddRef takes one more reference. A nil receiver is an accepted no-op.
func (o *Object) AddRef() error {
	if o == nil {
		return nil
	}
	switch o.refs.Add() {
	case refcount.Limit:
		return objErr(ioerr.OpAttaching, ioerr.CompRange, ioerr.StateExcessive)
	case refcount.Negative:
		return objErr(ioerr.OpAttaching, ioerr.CompSelf, ioerr.StateInvalid)
	}
	return nil
}

// Release lets one reference go; the final one tears the object down,
// through the registered owner when there is one. A nil receiver is an
// accepted no-op.
func (o *Object) Release() error {
	if o == nil {
		return nil
	}
	switch o.refs.Drop() {
	case refcount.Whack:
		if o.owner != nil {
			return o.owner.Teardown(o)
		}
		return o.Destroy()
	case refcount.Negative:
		return objErr(ioerr.OpReleasing, ioerr.CompRange, ioerr.StateExcessive)
	}
	return nil
}

// Destroy runs the backend teardown immediately, bypassing the count.
// Owners call it from their Teardown delegate; everyone else wants
// Release.
func (o *Object) Destroy() error {
	if o == nil {
		return objErr(ioerr.OpDestroying, ioerr.CompSelf, ioerr.StateNull)
	}
	if err := o.dispatch(ioerr.OpDestroying); err != nil {
		return err
	}
	return o.be.Close()
}

// SetOwner registers (or, with nil, clears) the owning collection.
func (o *Object) SetOwner(ow Owner) {
	if o != nil {
		o.owner = ow
	}
}

// Sys exposes the backend's underlying OS file and base offset; ok is
// false on a nil object and for backends with no contiguous mappable
// region. The offset defaults to 0.
func (o *Object) Sys() (f *os.File, offset int64, ok bool) {
	if o == nil || o.ver.Major != CurrentMajor {
		return nil, 0, false
	}
	return o.be.Sys()
}

// RandomAccess reports whether positional addressing is meaningful for
// the backend.
func (o *Object) RandomAccess() error {
	if o == nil {
		return objErr(ioerr.OpAccessing, ioerr.CompSelf, ioerr.StateNull)
	}
	if err := o.dispatch(ioerr.OpAccessing); err != nil {
		return err
	}
	return o.be.RandomAccess()
}

// Kind reports the implementation class. Below MinorKind the answer is
// KindInvalid; that is a legal answer, not an error.
func (o *Object) Kind() Kind {
	if o == nil {
		return KindNull
	}
	if o.kinder == nil {
		return KindInvalid
	}
	return o.kinder.Kind()
}

// Size reports the backend's current byte size.
func (o *Object) Size() (int64, error) {
	if o == nil {
		return 0, objErr(ioerr.OpAccessing, ioerr.CompSelf, ioerr.StateNull)
	}
	if err := o.dispatch(ioerr.OpAccessing); err != nil {
		return 0, err
	}
	return o.be.Size()
}

// SetSize resizes the backend. Requires the write capability.
func (o *Object) SetSize(size int64) error {
	if o == nil {
		return objErr(ioerr.OpResizing, ioerr.CompSelf, ioerr.StateNull)
	}
	if !o.canWrite {
		return objErr(ioerr.OpResizing, ioerr.CompCapability, ioerr.StateReadOnly)
	}
	if size < 0 {
		return objErr(ioerr.OpResizing, ioerr.CompParam, ioerr.StateInvalid)
	}
	if err := o.dispatch(ioerr.OpResizing); err != nil {
		return err
	}
	return o.be.Truncate(size)
}

// ReadAt reads into p from absolute position pos with one backend
// call. Short counts are legal; a count of 0 means end of input.
func (o *Object) ReadAt(p []byte, pos int64) (int, error) {
	if err := o.checkRead(p); err != nil {
		return 0, err
	}
	return o.readAt(p, pos)
}

// TimedReadAt is ReadAt bounded by tm. A backend below MinorTimed
// accepts only a nil tm, which degrades to the plain read; a real
// budget it cannot honor is a version error, never a silent downgrade.
func (o *Object) TimedReadAt(p []byte, pos int64, tm *timeout.Timeout) (int, error) {
	if err := o.checkRead(p); err != nil {
		return 0, err
	}
	return o.timedReadAt(p, pos, tm)
}

// WriteAt writes p at absolute position pos with one backend call.
// An empty (or nil) p is an accepted no-op.
func (o *Object) WriteAt(p []byte, pos int64) (int, error) {
	done, err := o.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	return o.writeAt(p, pos)
}

// TimedWriteAt is WriteAt bounded by tm, with the same version rule as
// TimedReadAt.
func (o *Object) TimedWriteAt(p []byte, pos int64, tm *timeout.Timeout) (int, error) {
	done, err := o.checkWrite(p)
	if done || err != nil {
		return 0, err
	}
	return o.timedWriteAt(p, pos, tm)
}

// checkRead runs the read-family preconditions in contract order: the
// capability refusal comes before any buffer inspection, so a gated
// call never reaches the backend.
func (o *Object) checkRead(p []byte) error {
	if o == nil {
		return objErr(ioerr.OpReading, ioerr.CompSelf, ioerr.StateNull)
	}
	if !o.canRead {
		return objErr(ioerr.OpReading, ioerr.CompCapability, ioerr.StateWriteOnly)
	}
	if p == nil {
		return objErr(ioerr.OpReading, ioerr.CompBuffer, ioerr.StateNull)
	}
	if len(p) == 0 {
		return objErr(ioerr.OpReading, ioerr.CompBuffer, ioerr.StateInsufficient)
	}
	return o.dispatch(ioerr.OpReading)
}

// checkWrite runs the write-family preconditions. done reports the
// accepted empty-write no-op, which still requires the write
// capability.
func (o *Object) checkWrite(p []byte) (done bool, err error) {
	if o == nil {
		return false, objErr(ioerr.OpWriting, ioerr.CompSelf, ioerr.StateNull)
	}
	if !o.canWrite {
		return false, objErr(ioerr.OpWriting, ioerr.CompCapability, ioerr.StateReadOnly)
	}
	if len(p) == 0 {
		return true, nil
	}
	return false, o.dispatch(ioerr.OpWriting)
}

// readAt is the dispatch-level single read with io.EOF normalized to
// the zero-count end-of-input signal.
func (o *Object) readAt(p []byte, pos int64) (int, error) {
	n, err := o.be.ReadAt(p, pos)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return 0, err
	}
	return n, nil
}

func (o *Object) timedReadAt(p []byte, pos int64, tm *timeout.Timeout) (int, error) {
	if o.timed == nil {
		if tm == nil {
			return o.readAt(p, pos)
		}
		return 0, objErr(ioerr.OpReading, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	n, err := o.timed.TimedReadAt(p, pos, tm)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return 0, err
	}
	return n, nil
}

func (o *Object) writeAt(p []byte, pos int64) (int, error) {
	n, err := o.be.WriteAt(p, pos)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (o *Object) timedWriteAt(p []byte, pos int64, tm *timeout.Timeout) (int, error) {
	if o.timed == nil {
		if tm == nil {
			return o.writeAt(p, pos)
		}
		return 0, objErr(ioerr.OpWriting, ioerr.CompInterface, ioerr.StateBadVersion)
	}
	n, err := o.timed.TimedWriteAt(p, pos, tm)
	if err != nil {
		return 0, err
	}
	return n, nil
}
