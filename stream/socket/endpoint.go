package socket

import (
	"fmt"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/byteio/go-byteio/ioerr"
)

// Family selects the transport an Endpoint addresses.
type Family int

const (
	FamilyIPv4 Family = iota + 1
	FamilyIPC
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPC:
		return "ipc"
	}
	return "invalid"
}

// Loopback is the IPv4 loopback address in Endpoint numbering.
const Loopback uint32 = 0x7f000001

// ipcDir is the per-user directory holding named local sockets.
const ipcDir = ".ncbi"

// maxIPCPath is the sun_path capacity on the tightest supported
// platform; resolved paths must fit with the trailing NUL.
const maxIPCPath = 104

// Endpoint names one peer: an IPv4 host:port pair or a named local
// (IPC) rendezvous. The zero value addresses nothing.
type Endpoint struct {
	family Family
	addr   uint32 // a.b.c.d read as a big-endian number
	port   uint16
	name   string
}

// IPv4 returns an endpoint for addr:port, with addr the dotted quad
// read as one big-endian number (e.g. 127.0.0.1 = 0x7f000001).
func IPv4(addr uint32, port uint16) Endpoint {
	return Endpoint{family: FamilyIPv4, addr: addr, port: port}
}

// IPC returns an endpoint for the named local rendezvous. The name is
// resolved beneath $HOME/.ncbi at connect or listen time.
func IPC(name string) Endpoint {
	return Endpoint{family: FamilyIPC, name: name}
}

// Family reports which transport the endpoint addresses.
func (e Endpoint) Family() Family {
	return e.family
}

// Name reports the IPC rendezvous name; empty for IPv4 endpoints.
func (e Endpoint) Name() string {
	return e.name
}

// Addr reports the IPv4 address; 0 for IPC endpoints.
func (e Endpoint) Addr() uint32 {
	return e.addr
}

// Port reports the IPv4 port; 0 for IPC endpoints.
func (e Endpoint) Port() uint16 {
	return e.port
}

func (e Endpoint) String() string {
	switch e.family {
	case FamilyIPv4:
		return fmt.Sprintf("%d.%d.%d.%d:%d",
			byte(e.addr>>24), byte(e.addr>>16), byte(e.addr>>8), byte(e.addr), e.port)
	case FamilyIPC:
		return e.name
	}
	return "<nil>"
}

// resolveIPCPath maps an IPC name to its filesystem path under the
// user's rendezvous directory. The join cannot escape that directory,
// and the result must fit a socket address structure.
func resolveIPCPath(name string) (string, error) {
	if name == "" {
		return "", ioerr.New(ioerr.SubsysNet, ioerr.TargetSocket, ioerr.OpResolving, ioerr.CompName, ioerr.StateNull)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ioerr.New(ioerr.SubsysNet, ioerr.TargetProcess, ioerr.OpResolving, ioerr.CompName, ioerr.StateNotFound)
	}
	path, err := securejoin.SecureJoin(filepath.Join(home, ipcDir), name)
	if err != nil {
		return "", ioerr.New(ioerr.SubsysNet, ioerr.TargetSocket, ioerr.OpResolving, ioerr.CompName, ioerr.StateInvalid)
	}
	if len(path) >= maxIPCPath {
		return "", ioerr.New(ioerr.SubsysNet, ioerr.TargetSocket, ioerr.OpResolving, ioerr.CompName, ioerr.StateExcessive)
	}
	return path, nil
}
