// Package byteio implements positioned and sequential byte I/O over
// interchangeable backends
//
// The package offers two transfer disciplines. An object
// (github.com/byteio/go-byteio/object) reads and writes at explicit
// offsets over something addressable: a plain file, a block or
// character device, a growable in-memory buffer, or a fixed window
// carved out of another object. A stream
// (github.com/byteio/go-byteio/stream) moves bytes strictly in order
// over something with no notion of position, such as a connected
// socket.
//
// Instances are reference counted. A constructor hands back one
// reference; AddRef takes another, Release drops one, and the last
// Release tears the backend down. Single-shot ReadAt/WriteAt calls may
// transfer fewer bytes than asked; the completion helpers (ReadAllAt,
// ReadExactlyAt, WriteAllAt and their stream counterparts) drive them
// until the transfer finishes, and the Timed variants bound every step
// with a timeout.Timeout.
//
// Some examples:
//
// 1. Create a 4KB file and write a payload at offset 1024.
//
//	import byteio "github.com/byteio/go-byteio"
//
//	o, err := byteio.CreateFile("/tmp/payload.bin", 4096)
//	n, err := o.WriteAllAt([]byte("payload"), 1024)
//	err = o.Release()
//
// 2. Wrap bytes already in memory and hand them to code that expects an
// object.
//
//	o, err := byteio.NewMemory([]byte("lorem ipsum"))
//	buf := make([]byte, 5)
//	err = o.ReadExactlyAt(buf, 6) // buf now holds "ipsum"
//	err = o.Release()
//
// 3. Expose the third 512-byte sector of an image as an object of its
// own. The window keeps the image alive until the window itself is
// released.
//
//	img, err := byteio.OpenFile("/tmp/disk.img")
//	sector, err := byteio.NewSub(img, 2*512, 512)
//	err = img.Release()
//
// 4. Talk to a TCP service on the loopback interface with a bounded
// read.
//
//	import "github.com/byteio/go-byteio/stream/socket"
//	import "github.com/byteio/go-byteio/timeout"
//
//	conn, err := byteio.Dial(socket.IPv4(socket.Loopback, 7777), socket.Config{})
//	n, err := conn.WriteAll([]byte("ping"))
//	buf := make([]byte, 4)
//	err = conn.TimedReadExactly(buf, timeout.New(2*time.Second))
//	err = conn.Release()
package byteio

import (
	"errors"

	"github.com/byteio/go-byteio/object"
	"github.com/byteio/go-byteio/object/file"
	"github.com/byteio/go-byteio/object/mem"
	"github.com/byteio/go-byteio/object/sub"
	"github.com/byteio/go-byteio/stream/socket"
)

// OpenFile opens the file at path as a read-only object. The path may
// name a regular file, a device, or a named pipe; Kind reports which.
func OpenFile(path string) (*object.Object, error) {
	if path == "" {
		return nil, errors.New("must pass a file path")
	}
	return file.Open(path)
}

// OpenFileReadWrite opens the file at path as an object readable and
// writable at any offset. The file must already exist; use CreateFile
// to make a new one.
func OpenFileReadWrite(path string) (*object.Object, error) {
	if path == "" {
		return nil, errors.New("must pass a file path")
	}
	return file.OpenReadWrite(path)
}

// CreateFile creates the file at path, truncating one that already
// exists, and returns a read-write object over it. A positive size
// preallocates that many zero bytes.
func CreateFile(path string, size int64) (*object.Object, error) {
	if path == "" {
		return nil, errors.New("must pass a file path")
	}
	if size < 0 {
		return nil, errors.New("must pass a non-negative size to create")
	}
	return file.Create(path, size)
}

// NewMemory returns a read-write object over an in-memory buffer seeded
// with a copy of data. Writing past the end grows the buffer; data
// itself is never modified. A nil data starts the object empty.
func NewMemory(data []byte) (*object.Object, error) {
	return mem.NewBuffer(data)
}

// NewSub returns a fixed-size object exposing the window
// [offset, offset+size) of parent. The window takes its own reference
// to parent and inherits parent's access mode; parent must support
// random access.
func NewSub(parent *object.Object, offset, size int64) (*object.Object, error) {
	return sub.New(parent, offset, size)
}

// Dial connects a stream socket to remote. It is shorthand for
// socket.Dial with the same semantics.
func Dial(remote socket.Endpoint, cfg socket.Config) (*socket.Socket, error) {
	return socket.Dial(remote, cfg)
}

// Listen binds a listening socket at ep whose Accept hands out
// connected streams. It is shorthand for socket.Listen.
func Listen(ep socket.Endpoint, cfg socket.Config) (*socket.Socket, error) {
	return socket.Listen(ep, cfg)
}
