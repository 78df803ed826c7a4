//go:build unix

package socket

import (
	"encoding/binary"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/byteio/go-byteio/timeout"
)

func sysSocketInet4() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
}

func sysSocketUnix() (int, error) {
	return unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
}

func setNoDelay(fd int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}

func setReuseAddr(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

func setNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}

func inet4Sockaddr(addr uint32, port uint16) *unix.SockaddrInet4 {
	sa := &unix.SockaddrInet4{Port: int(port)}
	binary.BigEndian.PutUint32(sa.Addr[:], addr)
	return sa
}

func sysBindInet4(fd int, addr uint32, port uint16) error {
	return unix.Bind(fd, inet4Sockaddr(addr, port))
}

func sysConnectInet4(fd int, addr uint32, port uint16) error {
	return unix.Connect(fd, inet4Sockaddr(addr, port))
}

func sysBindUnix(fd int, path string) error {
	return unix.Bind(fd, &unix.SockaddrUnix{Name: path})
}

func sysConnectUnix(fd int, path string) error {
	return unix.Connect(fd, &unix.SockaddrUnix{Name: path})
}

func sysListen(fd, backlog int) error {
	return unix.Listen(fd, backlog)
}

// sysAccept reports the accepted descriptor and the family implied by
// the peer address shape; an address of any other shape comes back as
// family 0.
func sysAccept(fd int) (int, Family, error) {
	for {
		nfd, sa, err := unix.Accept(fd)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return -1, 0, err
		}
		switch sa.(type) {
		case *unix.SockaddrInet4:
			return nfd, FamilyIPv4, nil
		case *unix.SockaddrUnix:
			return nfd, FamilyIPC, nil
		}
		return nfd, 0, nil
	}
}

func sysRead(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func sysWrite(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func sysShutdownWrite(fd int) error {
	return unix.Shutdown(fd, unix.SHUT_WR)
}

func sysShutdownRead(fd int) error {
	return unix.Shutdown(fd, unix.SHUT_RD)
}

func sysClose(fd int) error {
	return unix.Close(fd)
}

// drain discards whatever the peer still had in flight, without ever
// waiting for more.
func drain(fd int) {
	var buf [4096]byte
	for {
		n, _, err := unix.Recvfrom(fd, buf[:], unix.MSG_DONTWAIT)
		if n <= 0 || err != nil {
			return
		}
	}
}

// sockErrno fetches and clears the descriptor's pending error code; 0
// means none was set.
func sockErrno(fd int) syscall.Errno {
	code, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil || code == 0 {
		return 0
	}
	return syscall.Errno(code)
}

func sysSockname(fd int) (Endpoint, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return Endpoint{}, err
	}
	return endpointFromSockaddr(sa)
}

func sysPeername(fd int) (Endpoint, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return Endpoint{}, err
	}
	return endpointFromSockaddr(sa)
}

func endpointFromSockaddr(sa unix.Sockaddr) (Endpoint, error) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return IPv4(binary.BigEndian.Uint32(a.Addr[:]), uint16(a.Port)), nil
	case *unix.SockaddrUnix:
		return Endpoint{family: FamilyIPC, name: a.Name}, nil
	}
	return Endpoint{}, unix.EAFNOSUPPORT
}

// waitReady polls fd for the requested interest within tm; nil blocks
// indefinitely. An interrupted poll resumes with whatever budget is
// left, so EINTR costs only the time already spent.
func waitReady(fd int, interest readySet, tm *timeout.Timeout) (readySet, error) {
	var events int16
	if interest&readyIn != 0 {
		events |= unix.POLLIN | unix.POLLPRI
	}
	if interest&readyOut != 0 {
		events |= unix.POLLOUT
	}
	if tm != nil {
		tm.Prepare()
	}
	for {
		ms := -1
		if tm != nil {
			ms = msRemaining(tm)
		}
		fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		return readyFromEvents(fds[0].Revents), nil
	}
}

// msRemaining converts the leftover budget to poll milliseconds,
// rounding up so a sub-millisecond remainder still waits.
func msRemaining(tm *timeout.Timeout) int {
	rem := tm.Remaining()
	if rem <= 0 {
		return 0
	}
	return int((rem + time.Millisecond - 1) / time.Millisecond)
}

func readyFromEvents(re int16) readySet {
	var r readySet
	if re&(unix.POLLIN|unix.POLLPRI) != 0 {
		r |= readyIn
	}
	if re&unix.POLLOUT != 0 {
		r |= readyOut
	}
	if re&unix.POLLHUP != 0 {
		r |= readyHup
	}
	if re&(unix.POLLERR|unix.POLLNVAL) != 0 {
		r |= readyErr
	}
	return r
}
