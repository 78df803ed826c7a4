// Package ioerr defines the structured error taxonomy shared by the
// object and stream contracts. Every failure is a tuple of subsystem,
// target entity, operation context, failing component and failure
// state, so callers branch on a small closed category set instead of
// platform codes. The OS code that caused a translated failure rides
// along and is reachable through errors.Is / errors.As.
package ioerr

import (
	"errors"
	"strings"
	"syscall"
)

// Subsys names the originating subsystem.
type Subsys int

const (
	SubsysIO Subsys = iota
	SubsysNet
)

func (s Subsys) String() string {
	switch s {
	case SubsysIO:
		return "io"
	case SubsysNet:
		return "net"
	}
	return "subsys?"
}

// Target names the entity an operation was addressed to.
type Target int

const (
	TargetNone Target = iota
	TargetObject
	TargetStream
	TargetSocket
	TargetConnection
	TargetProcess
)

func (t Target) String() string {
	switch t {
	case TargetNone:
		return ""
	case TargetObject:
		return "object"
	case TargetStream:
		return "stream"
	case TargetSocket:
		return "socket"
	case TargetConnection:
		return "connection"
	case TargetProcess:
		return "process"
	}
	return "target?"
}

// Op is the operation context a failure occurred in.
type Op int

const (
	OpConstructing Op = iota
	OpDestroying
	OpAccessing
	OpReading
	OpWriting
	OpResizing
	OpPositioning
	OpConnecting
	OpWaiting
	OpResolving
	OpAllocating
	OpAttaching
	OpReleasing
)

func (o Op) String() string {
	switch o {
	case OpConstructing:
		return "constructing"
	case OpDestroying:
		return "destroying"
	case OpAccessing:
		return "accessing"
	case OpReading:
		return "reading"
	case OpWriting:
		return "writing"
	case OpResizing:
		return "resizing"
	case OpPositioning:
		return "positioning"
	case OpConnecting:
		return "connecting"
	case OpWaiting:
		return "waiting"
	case OpResolving:
		return "resolving"
	case OpAllocating:
		return "allocating"
	case OpAttaching:
		return "attaching"
	case OpReleasing:
		return "releasing"
	}
	return "op?"
}

// Comp is the component that failed within the operation.
type Comp int

const (
	CompNone Comp = iota
	CompSelf
	CompParam
	CompInterface
	CompBuffer
	CompMemory
	CompTransfer
	CompTimeout
	CompConnection
	CompName
	CompId
	CompRange
	CompCapability
)

func (c Comp) String() string {
	switch c {
	case CompNone:
		return ""
	case CompSelf:
		return "self"
	case CompParam:
		return "param"
	case CompInterface:
		return "interface"
	case CompBuffer:
		return "buffer"
	case CompMemory:
		return "memory"
	case CompTransfer:
		return "transfer"
	case CompTimeout:
		return "timeout"
	case CompConnection:
		return "connection"
	case CompName:
		return "name"
	case CompId:
		return "descriptor"
	case CompRange:
		return "range"
	case CompCapability:
		return "capability"
	}
	return "comp?"
}

// State is the way the component failed.
type State int

const (
	StateNull State = iota
	StateInvalid
	StateIncorrect
	StateInsufficient
	StateExhausted
	StateBusy
	StateIncomplete
	StateCanceled
	StateNotFound
	StateNotAvailable
	StateExists
	StateUnauthorized
	StateReadOnly
	StateWriteOnly
	StateExcessive
	StateInterrupted
	StateBadVersion
	StateUnsupported
	StateUnexpected
	StateUnknown
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateInvalid:
		return "invalid"
	case StateIncorrect:
		return "incorrect"
	case StateInsufficient:
		return "insufficient"
	case StateExhausted:
		return "exhausted"
	case StateBusy:
		return "busy"
	case StateIncomplete:
		return "incomplete"
	case StateCanceled:
		return "canceled"
	case StateNotFound:
		return "not found"
	case StateNotAvailable:
		return "not available"
	case StateExists:
		return "exists"
	case StateUnauthorized:
		return "unauthorized"
	case StateReadOnly:
		return "read-only"
	case StateWriteOnly:
		return "write-only"
	case StateExcessive:
		return "excessive"
	case StateInterrupted:
		return "interrupted"
	case StateBadVersion:
		return "bad version"
	case StateUnsupported:
		return "unsupported"
	case StateUnexpected:
		return "unexpected"
	case StateUnknown:
		return "unknown"
	}
	return "state?"
}

// Error is the structured failure record.
type Error struct {
	Subsys Subsys
	Target Target
	Op     Op
	Comp   Comp
	State  State
	// Errno is the OS code behind a translated failure, zero otherwise.
	Errno syscall.Errno
}

// New builds an Error from its category tuple.
func New(subsys Subsys, target Target, op Op, comp Comp, state State) *Error {
	return &Error{Subsys: subsys, Target: target, Op: op, Comp: comp, State: state}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Subsys.String())
	if e.Target != TargetNone {
		b.WriteByte(' ')
		b.WriteString(e.Target.String())
	}
	b.WriteByte(' ')
	b.WriteString(e.Op.String())
	b.WriteString(": ")
	if e.Comp != CompNone {
		b.WriteString(e.Comp.String())
		b.WriteByte(' ')
	}
	b.WriteString(e.State.String())
	if e.Errno != 0 {
		b.WriteString(" (")
		b.WriteString(e.Errno.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap exposes the causing OS code, letting errors.Is match against
// syscall constants.
func (e *Error) Unwrap() error {
	if e.Errno != 0 {
		return e.Errno
	}
	return nil
}

func fields(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsTimeout reports whether err is a spent wait budget. Distinct from
// resource exhaustion: only the transfer bound ran out.
func IsTimeout(err error) bool {
	e, ok := fields(err)
	return ok && e.Comp == CompTimeout && e.State == StateExhausted
}

// IsIncomplete reports whether err is a transfer that stalled short of
// its requested total.
func IsIncomplete(err error) bool {
	e, ok := fields(err)
	return ok && e.Comp == CompTransfer && e.State == StateIncomplete
}

// IsBadVersion reports whether err is a contract revision mismatch.
func IsBadVersion(err error) bool {
	e, ok := fields(err)
	return ok && e.State == StateBadVersion
}

// IsNoPerm reports whether err is a capability-flag refusal: the object
// exists but was constructed without the needed access direction.
func IsNoPerm(err error) bool {
	e, ok := fields(err)
	return ok && e.Comp == CompCapability &&
		(e.State == StateReadOnly || e.State == StateWriteOnly)
}

// IsTransient reports whether err names a condition worth retrying:
// a spent budget or an interrupted transfer, never a contract or
// capability failure.
func IsTransient(err error) bool {
	e, ok := fields(err)
	if !ok {
		return false
	}
	if e.Comp == CompTimeout && e.State == StateExhausted {
		return true
	}
	return e.State == StateInterrupted || e.State == StateCanceled
}
