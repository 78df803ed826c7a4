package object

import (
	"io"
	"os"

	"github.com/byteio/go-byteio/timeout"
)

// Version tags a backend with the contract revision it implements.
// Callers and backends agree on Major exactly; Minor only ever adds
// operations, so a backend at minor k serves any caller needing k or
// less.
type Version struct {
	Major uint32
	Minor uint32
}

// Contract revisions understood by this package.
const (
	CurrentMajor = 1

	// MinorBase is positional read/write, sizing and identity.
	MinorBase = 0
	// MinorKind adds the implementation-class tag.
	MinorKind = 1
	// MinorTimed adds bounded-wait reads and writes.
	MinorTimed = 2
)

// Kind is the implementation-class tag of a backend.
type Kind uint32

const (
	// KindNull is the answer of a nil object.
	KindNull Kind = iota
	// KindInvalid is the answer of a backend below MinorKind.
	KindInvalid
	KindFile
	KindCharDev
	KindBlockDev
	KindFIFO
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInvalid:
		return "invalid"
	case KindFile:
		return "file"
	case KindCharDev:
		return "character device"
	case KindBlockDev:
		return "block device"
	case KindFIFO:
		return "fifo"
	case KindMemory:
		return "memory"
	}
	return "unknown"
}

// Backend is the operation set every object implementation provides,
// the MinorBase tier. ReadAt and WriteAt follow io semantics; the
// contract normalizes io.EOF away, so implementations may return it
// freely.
type Backend interface {
	io.ReaderAt
	io.WriterAt

	// Size reports the current byte size.
	Size() (int64, error)

	// Truncate grows or shrinks the backend to size bytes.
	Truncate(size int64) error

	// Sys exposes the underlying OS file and the base offset of the
	// mapped region; ok is false for backends without one. The offset
	// is meaningful whenever ok is true and defaults to 0.
	Sys() (f *os.File, offset int64, ok bool)

	// RandomAccess reports (with nil) whether positional addressing is
	// meaningful for this backend. Some backends legitimately refuse.
	RandomAccess() error

	// Close releases backend resources. The contract calls it exactly
	// once, from the final Release or an explicit Destroy.
	Close() error
}

// Kinder is the capability a backend declares at MinorKind.
type Kinder interface {
	Kind() Kind
}

// TimedBackend is the capability a backend declares at MinorTimed.
// A nil *timeout.Timeout means block indefinitely.
type TimedBackend interface {
	TimedReadAt(p []byte, off int64, tm *timeout.Timeout) (int, error)
	TimedWriteAt(p []byte, off int64, tm *timeout.Timeout) (int, error)
}
