//go:build !unix

package socket

import (
	"syscall"

	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/timeout"
)

// The transport needs poll(2) and raw descriptors; platforms without
// them get compile-time stubs that refuse at run time.

func errUnsupported(op ioerr.Op) error {
	return ioerr.New(ioerr.SubsysNet, ioerr.TargetSocket, op, ioerr.CompInterface, ioerr.StateUnsupported)
}

func sysSocketInet4() (int, error) { return -1, errUnsupported(ioerr.OpConstructing) }
func sysSocketUnix() (int, error)  { return -1, errUnsupported(ioerr.OpConstructing) }

func setNoDelay(int) error   { return errUnsupported(ioerr.OpConstructing) }
func setReuseAddr(int) error { return errUnsupported(ioerr.OpConstructing) }
func setNonblock(int) error  { return errUnsupported(ioerr.OpConstructing) }

func sysBindInet4(int, uint32, uint16) error    { return errUnsupported(ioerr.OpConstructing) }
func sysConnectInet4(int, uint32, uint16) error { return errUnsupported(ioerr.OpConnecting) }
func sysBindUnix(int, string) error             { return errUnsupported(ioerr.OpConstructing) }
func sysConnectUnix(int, string) error          { return errUnsupported(ioerr.OpConnecting) }
func sysListen(int, int) error                  { return errUnsupported(ioerr.OpConstructing) }

func sysAccept(int) (int, Family, error) {
	return -1, 0, errUnsupported(ioerr.OpWaiting)
}

func sysRead(int, []byte) (int, error)  { return 0, errUnsupported(ioerr.OpReading) }
func sysWrite(int, []byte) (int, error) { return 0, errUnsupported(ioerr.OpWriting) }

func sysShutdownWrite(int) error { return errUnsupported(ioerr.OpDestroying) }
func sysShutdownRead(int) error  { return errUnsupported(ioerr.OpDestroying) }
func sysClose(int) error         { return errUnsupported(ioerr.OpDestroying) }

func drain(int) {}

func sockErrno(int) syscall.Errno { return 0 }

func sysSockname(int) (Endpoint, error) {
	return Endpoint{}, errUnsupported(ioerr.OpAccessing)
}

func sysPeername(int) (Endpoint, error) {
	return Endpoint{}, errUnsupported(ioerr.OpAccessing)
}

func waitReady(int, readySet, *timeout.Timeout) (readySet, error) {
	return 0, errUnsupported(ioerr.OpWaiting)
}
