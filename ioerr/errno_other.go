//go:build !unix

package ioerr

import (
	"errors"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Translate has no classified code table on this platform; every OS
// error surfaces as Unknown, flagged in the log.
func Translate(subsys Subsys, target Target, op Op, err error) *Error {
	if err == nil {
		return nil
	}
	e := &Error{Subsys: subsys, Target: target, Op: op, State: StateUnknown}
	var eno syscall.Errno
	if errors.As(err, &eno) {
		e.Errno = eno
	}
	log.WithFields(log.Fields{
		"op":    op.String(),
		"cause": err.Error(),
	}).Error("unclassified system error")
	return e
}
