//go:build unix

package ioerr

import (
	"errors"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Translate maps an OS error onto the taxonomy, keeping the caller's
// operation context. Codes outside the classified set map to Unknown
// and are flagged in the log, never dropped silently.
func Translate(subsys Subsys, target Target, op Op, err error) *Error {
	if err == nil {
		return nil
	}
	var eno syscall.Errno
	if !errors.As(err, &eno) {
		log.WithFields(log.Fields{
			"op":    op.String(),
			"cause": err.Error(),
		}).Error("unclassifiable system error")
		return &Error{Subsys: subsys, Target: target, Op: op, State: StateUnknown}
	}

	e := &Error{Subsys: subsys, Target: target, Op: op, Errno: eno}
	switch eno {
	case unix.EACCES, unix.EPERM:
		e.Comp, e.State = CompName, StateUnauthorized
	case unix.EADDRINUSE:
		e.Comp, e.State = CompName, StateExists
	case unix.EADDRNOTAVAIL:
		e.Comp, e.State = CompName, StateNotFound
	case unix.EAFNOSUPPORT:
		e.Comp, e.State = CompParam, StateIncorrect
	case unix.EAGAIN:
		e.Comp, e.State = CompConnection, StateExhausted
	case unix.EALREADY:
		e.Comp, e.State = CompId, StateBusy
	case unix.EBADF:
		e.Comp, e.State = CompId, StateInvalid
	case unix.ECONNABORTED, unix.ECONNREFUSED, unix.ECONNRESET:
		e.Comp, e.State = CompConnection, StateCanceled
	case unix.EDESTADDRREQ:
		e.Comp, e.State = CompParam, StateIncorrect
	case unix.EFAULT:
		e.Comp, e.State = CompParam, StateInvalid
	case unix.EHOSTUNREACH:
		e.Comp, e.State = CompConnection, StateNotAvailable
	case unix.EINPROGRESS:
		e.Comp, e.State = CompId, StateBusy
	case unix.EINTR:
		e.Comp, e.State = CompConnection, StateCanceled
	case unix.EINVAL:
		e.Comp, e.State = CompParam, StateInvalid
	case unix.EISCONN:
		e.Comp, e.State = CompId, StateExists
	case unix.ELOOP:
		// the failure belongs to path resolution, whatever the caller
		// was doing
		e.Op, e.Comp, e.State = OpResolving, CompName, StateExcessive
	case unix.EMFILE, unix.ENFILE:
		e.Comp, e.State = CompId, StateExhausted
	case unix.EMSGSIZE:
		e.Comp, e.State = CompBuffer, StateExcessive
	case unix.ENAMETOOLONG:
		e.Comp, e.State = CompName, StateExcessive
	case unix.ENETDOWN, unix.ENETRESET, unix.ENETUNREACH:
		e.Comp, e.State = CompConnection, StateNotAvailable
	case unix.ENOBUFS:
		e.Comp, e.State = CompConnection, StateInterrupted
	case unix.ENOENT:
		e.Comp, e.State = CompName, StateNotFound
	case unix.ENOMEM:
		e.Op, e.Comp, e.State = OpAllocating, CompMemory, StateExhausted
	case unix.ENOTCONN, unix.ENOTSOCK:
		e.Comp, e.State = CompId, StateInvalid
	case unix.ENOTDIR:
		e.Comp, e.State = CompName, StateIncorrect
	case unix.EOPNOTSUPP, unix.EPROTONOSUPPORT:
		e.Comp, e.State = CompParam, StateUnsupported
	case unix.EPIPE:
		e.Comp, e.State = CompConnection, StateCanceled
	case unix.EROFS:
		e.Comp, e.State = CompName, StateReadOnly
	case unix.ETIMEDOUT:
		e.Comp, e.State = CompConnection, StateNotAvailable
	default:
		e.State = StateUnknown
		log.WithFields(log.Fields{
			"op":    op.String(),
			"errno": int(eno),
		}).Error("unclassified system error code")
	}
	return e
}
