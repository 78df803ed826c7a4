// Package socket implements the sequential-stream transport over
// TCP/IPv4 and named local (UNIX-domain) IPC sockets. A Socket is a
// stream.Stream at version {1,1}: every transfer can be bounded by a
// timeout.Timeout, with readiness established by one poll primitive
// before the descriptor is touched.
package socket

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/stream"
	"github.com/byteio/go-byteio/timeout"
)

const listenBacklog = 5

// Config carries the per-socket knobs. The zero value means unbounded
// plain reads and writes, no connect retries and no local bind.
type Config struct {
	// ReadTimeout bounds plain Read calls; zero or negative means no
	// bound. TimedRead ignores it.
	ReadTimeout time.Duration

	// WriteTimeout bounds plain Write calls the same way.
	WriteTimeout time.Duration

	// RetryBudget is the number of fixed one-second sleeps Dial may
	// spend between connect attempts: n allows n+1 attempts, negative
	// retries without bound.
	RetryBudget int

	// Local optionally binds the dialing side. Its family must match
	// the remote endpoint.
	Local *Endpoint
}

type connState int

const (
	stateUnconnected connState = iota
	stateConnecting
	stateListening
	stateConnected
	stateHalfClosed
	stateClosed
)

// readySet is the platform-neutral poll outcome.
type readySet uint8

const (
	readyIn readySet = 1 << iota
	readyOut
	readyHup
	readyErr
)

var retrySleep = func() { time.Sleep(time.Second) }

// Socket is a connected, listening or accepted transport endpoint.
// I/O goes through the embedded stream contract; Accept and the
// endpoint accessors are the transport-specific additions.
type Socket struct {
	stream.Stream
	c *conn
}

// conn is the stream backend: one exclusively owned OS descriptor plus
// the connection state machine.
type conn struct {
	fd     int
	state  connState
	family Family

	// plain-call budgets; zero or negative means no bound
	readTimeout  time.Duration
	writeTimeout time.Duration

	// path is the IPC rendezvous owned by a listener, removed at close
	path string

	log *log.Entry
}

var _ stream.Backend = (*conn)(nil)
var _ stream.TimedBackend = (*conn)(nil)

func sockErr(op ioerr.Op, comp ioerr.Comp, state ioerr.State) *ioerr.Error {
	return ioerr.New(ioerr.SubsysNet, ioerr.TargetSocket, op, comp, state)
}

func connErr(op ioerr.Op, comp ioerr.Comp, state ioerr.State) *ioerr.Error {
	return ioerr.New(ioerr.SubsysNet, ioerr.TargetConnection, op, comp, state)
}

// wrapOS shapes an OS-level failure, letting already-shaped errors
// through untouched.
func wrapOS(target ioerr.Target, op ioerr.Op, err error) error {
	var e *ioerr.Error
	if errors.As(err, &e) {
		return e
	}
	return ioerr.Translate(ioerr.SubsysNet, target, op, err)
}

func newSocket(fd int, family Family, st connState, cfg Config) (*Socket, error) {
	c := &conn{
		fd:           fd,
		state:        st,
		family:       family,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		log:          log.WithField("socket", uuid.New().String()),
	}
	s := &Socket{c: c}
	ver := stream.Version{Major: stream.CurrentMajor, Minor: stream.MinorTimed}
	if err := stream.Init(&s.Stream, c, ver, true, true); err != nil {
		_ = sysClose(fd)
		return nil, err
	}
	return s, nil
}

// Dial connects to remote, retrying per cfg.RetryBudget with a fixed
// one-second pause between attempts. IPv4 connections disable send
// coalescing and run the descriptor non-blocking once connected; IPC
// connections keep a blocking descriptor.
func Dial(remote Endpoint, cfg Config) (*Socket, error) {
	if cfg.Local != nil && cfg.Local.family != remote.family {
		return nil, sockErr(ioerr.OpConnecting, ioerr.CompParam, ioerr.StateIncorrect)
	}
	switch remote.family {
	case FamilyIPv4:
		return dialIPv4(remote, cfg)
	case FamilyIPC:
		return dialIPC(remote, cfg)
	}
	return nil, sockErr(ioerr.OpConnecting, ioerr.CompParam, ioerr.StateInvalid)
}

func dialIPv4(remote Endpoint, cfg Config) (*Socket, error) {
	fd, err := withRetry(cfg.RetryBudget, func() (int, error) {
		return tryIPv4(remote, cfg.Local)
	})
	if err != nil {
		return nil, wrapOS(ioerr.TargetConnection, ioerr.OpConnecting, err)
	}
	s, err := newSocket(fd, FamilyIPv4, stateConnected, cfg)
	if err != nil {
		return nil, err
	}
	s.c.log.WithField("peer", remote.String()).Debug("connected")
	return s, nil
}

func dialIPC(remote Endpoint, cfg Config) (*Socket, error) {
	path, err := resolveIPCPath(remote.name)
	if err != nil {
		return nil, err
	}
	fd, err := withRetry(cfg.RetryBudget, func() (int, error) {
		return tryIPC(path)
	})
	if err != nil {
		return nil, wrapOS(ioerr.TargetConnection, ioerr.OpConnecting, err)
	}
	s, err := newSocket(fd, FamilyIPC, stateConnected, cfg)
	if err != nil {
		return nil, err
	}
	s.c.log.WithField("peer", path).Debug("connected")
	return s, nil
}

// withRetry runs try until it succeeds or the budget of one-second
// sleeps is spent. The budget counts sleeps, not attempts or elapsed
// time: n buys n+1 attempts, negative keeps trying.
func withRetry(budget int, try func() (int, error)) (int, error) {
	for attempt := 0; ; attempt++ {
		fd, err := try()
		if err == nil {
			return fd, nil
		}
		if budget >= 0 && attempt >= budget {
			return -1, err
		}
		retrySleep()
	}
}

func tryIPv4(remote Endpoint, local *Endpoint) (int, error) {
	fd, err := sysSocketInet4()
	if err != nil {
		return -1, err
	}
	_ = setNoDelay(fd) // best effort
	if local != nil {
		if err := sysBindInet4(fd, local.addr, local.port); err != nil {
			_ = sysClose(fd)
			return -1, err
		}
	}
	if err := sysConnectInet4(fd, remote.addr, remote.port); err != nil {
		_ = sysClose(fd)
		return -1, err
	}
	if err := setNonblock(fd); err != nil {
		_ = sysClose(fd)
		return -1, err
	}
	return fd, nil
}

func tryIPC(path string) (int, error) {
	fd, err := sysSocketUnix()
	if err != nil {
		return -1, err
	}
	if err := sysConnectUnix(fd, path); err != nil {
		_ = sysClose(fd)
		return -1, err
	}
	return fd, nil
}

// Listen binds ep and starts accepting with a fixed backlog. An IPC
// listener first clears any stale rendezvous path left by a dead
// process, then owns the path until closed.
func Listen(ep Endpoint, cfg Config) (*Socket, error) {
	var (
		fd        int
		ownedPath string
		err       error
	)
	switch ep.family {
	case FamilyIPv4:
		fd, err = listenFdIPv4(ep)
	case FamilyIPC:
		ownedPath, err = resolveIPCPath(ep.name)
		if err != nil {
			return nil, err
		}
		fd, err = listenFdIPC(ownedPath)
	default:
		return nil, sockErr(ioerr.OpConstructing, ioerr.CompParam, ioerr.StateInvalid)
	}
	if err != nil {
		return nil, wrapOS(ioerr.TargetSocket, ioerr.OpConstructing, err)
	}
	if err := sysListen(fd, listenBacklog); err != nil {
		_ = sysClose(fd)
		return nil, wrapOS(ioerr.TargetSocket, ioerr.OpConstructing, err)
	}
	s, err := newSocket(fd, ep.family, stateListening, cfg)
	if err != nil {
		return nil, err
	}
	s.c.path = ownedPath
	s.c.log.WithField("endpoint", ep.String()).Debug("listening")
	return s, nil
}

func listenFdIPv4(ep Endpoint) (int, error) {
	fd, err := sysSocketInet4()
	if err != nil {
		return -1, err
	}
	_ = setReuseAddr(fd) // best effort
	if err := sysBindInet4(fd, ep.addr, ep.port); err != nil {
		_ = sysClose(fd)
		return -1, err
	}
	return fd, nil
}

func listenFdIPC(path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return -1, err
	}
	// a stale path from a dead listener must not fail the bind
	_ = os.Remove(path)
	fd, err := sysSocketUnix()
	if err != nil {
		return -1, err
	}
	if err := sysBindUnix(fd, path); err != nil {
		_ = sysClose(fd)
		return -1, err
	}
	return fd, nil
}

// Accept blocks for the next inbound connection and returns it as a
// connected Socket inheriting the listener's timeouts. A peer address
// whose shape does not match the listener's family is an ABI
// inconsistency, reported rather than truncated.
func (s *Socket) Accept() (*Socket, error) {
	c := s.c
	if c == nil || c.state != stateListening {
		return nil, connErr(ioerr.OpWaiting, ioerr.CompConnection, ioerr.StateInvalid)
	}
	fd, family, err := sysAccept(c.fd)
	if err != nil {
		return nil, wrapOS(ioerr.TargetConnection, ioerr.OpWaiting, err)
	}
	if family != c.family {
		_ = sysClose(fd)
		return nil, connErr(ioerr.OpWaiting, ioerr.CompBuffer, ioerr.StateInsufficient)
	}
	if family == FamilyIPv4 {
		_ = setNoDelay(fd) // best effort
		if err := setNonblock(fd); err != nil {
			_ = sysClose(fd)
			return nil, wrapOS(ioerr.TargetConnection, ioerr.OpWaiting, err)
		}
	}
	child, err := newSocket(fd, family, stateConnected, Config{
		ReadTimeout:  c.readTimeout,
		WriteTimeout: c.writeTimeout,
	})
	if err != nil {
		return nil, err
	}
	child.c.log.Debug("accepted")
	return child, nil
}

// LocalEndpoint reports the bound local address; for a dialed IPv4
// socket that includes the kernel-chosen ephemeral port.
func (s *Socket) LocalEndpoint() (Endpoint, error) {
	c := s.c
	if c == nil || c.fd < 0 {
		return Endpoint{}, connErr(ioerr.OpAccessing, ioerr.CompConnection, ioerr.StateInvalid)
	}
	ep, err := sysSockname(c.fd)
	if err != nil {
		return Endpoint{}, wrapOS(ioerr.TargetConnection, ioerr.OpAccessing, err)
	}
	return ep, nil
}

// RemoteEndpoint reports the connected peer's address.
func (s *Socket) RemoteEndpoint() (Endpoint, error) {
	c := s.c
	if c == nil || c.fd < 0 {
		return Endpoint{}, connErr(ioerr.OpAccessing, ioerr.CompConnection, ioerr.StateInvalid)
	}
	ep, err := sysPeername(c.fd)
	if err != nil {
		return Endpoint{}, wrapOS(ioerr.TargetConnection, ioerr.OpAccessing, err)
	}
	return ep, nil
}

func defaultTm(d time.Duration) *timeout.Timeout {
	if d <= 0 {
		return nil
	}
	return timeout.New(d)
}

func (c *conn) Read(p []byte) (int, error) {
	return c.TimedRead(p, defaultTm(c.readTimeout))
}

func (c *conn) Write(p []byte) (int, error) {
	return c.TimedWrite(p, defaultTm(c.writeTimeout))
}

// TimedRead waits for read readiness within tm, then does one receive.
// Readiness outcomes are classified in a fixed order: a pending socket
// error first, then data, then hangup; no readiness within the bound
// is a timeout.
func (c *conn) TimedRead(p []byte, tm *timeout.Timeout) (int, error) {
	if c.state != stateConnected {
		return 0, connErr(ioerr.OpReading, ioerr.CompConnection, ioerr.StateInvalid)
	}
	ready, err := waitReady(c.fd, readyIn, tm)
	if err != nil {
		return 0, wrapOS(ioerr.TargetConnection, ioerr.OpReading, err)
	}
	switch {
	case ready&readyErr != 0:
		errno := sockErrno(c.fd)
		if errno == 0 {
			return 0, connErr(ioerr.OpReading, ioerr.CompConnection, ioerr.StateUnknown)
		}
		return 0, wrapOS(ioerr.TargetConnection, ioerr.OpReading, errno)
	case ready&readyIn != 0:
		n, err := sysRead(c.fd, p)
		if err != nil {
			return 0, wrapOS(ioerr.TargetConnection, ioerr.OpReading, err)
		}
		return n, nil
	case ready&readyHup != 0:
		// orderly shutdown by the peer: end of stream
		return 0, nil
	}
	return 0, connErr(ioerr.OpReading, ioerr.CompTimeout, ioerr.StateExhausted)
}

// TimedWrite waits for write readiness within tm, then does one send.
// A hangup outranks writability: the peer is gone, so the bytes have
// nowhere to go.
func (c *conn) TimedWrite(p []byte, tm *timeout.Timeout) (int, error) {
	if c.state != stateConnected {
		return 0, connErr(ioerr.OpWriting, ioerr.CompConnection, ioerr.StateInvalid)
	}
	ready, err := waitReady(c.fd, readyOut, tm)
	if err != nil {
		return 0, wrapOS(ioerr.TargetConnection, ioerr.OpWriting, err)
	}
	switch {
	case ready&readyErr != 0:
		errno := sockErrno(c.fd)
		if errno == 0 {
			return 0, connErr(ioerr.OpWriting, ioerr.CompConnection, ioerr.StateUnknown)
		}
		return 0, wrapOS(ioerr.TargetConnection, ioerr.OpWriting, errno)
	case ready&readyHup != 0:
		return 0, connErr(ioerr.OpWriting, ioerr.CompConnection, ioerr.StateCanceled)
	case ready&readyOut != 0:
		n, err := sysWrite(c.fd, p)
		if err != nil {
			return 0, wrapOS(ioerr.TargetConnection, ioerr.OpWriting, err)
		}
		return n, nil
	}
	return 0, connErr(ioerr.OpWriting, ioerr.CompTimeout, ioerr.StateExhausted)
}

// Close runs the orderly teardown: stop sending, discard whatever the
// peer still had in flight, stop receiving, release the descriptor,
// and drop an owned IPC path.
func (c *conn) Close() error {
	if c.fd < 0 {
		c.state = stateClosed
		return nil
	}
	if c.state == stateConnected {
		_ = sysShutdownWrite(c.fd)
		c.state = stateHalfClosed
		drain(c.fd)
		_ = sysShutdownRead(c.fd)
	}
	err := sysClose(c.fd)
	c.fd = -1
	c.state = stateClosed
	if c.path != "" {
		_ = os.Remove(c.path)
	}
	c.log.Debug("closed")
	if err != nil {
		return wrapOS(ioerr.TargetConnection, ioerr.OpDestroying, err)
	}
	return nil
}
