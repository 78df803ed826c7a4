package stream_test

import (
	"testing"

	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/stream"
	"github.com/byteio/go-byteio/testhelper"
	"github.com/byteio/go-byteio/timeout"
)

// feed serves reads from data in fixed-size chunks, then reports end
// of stream.
type feed struct {
	data  []byte
	chunk int
}

func (f *feed) read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, nil
	}
	n := copy(p, f.data)
	if n > f.chunk {
		n = f.chunk
	}
	f.data = f.data[n:]
	return n, nil
}

func TestReadAll(t *testing.T) {
	src := &feed{data: []byte("abcdefgh"), chunk: 3}
	s := mustInit(t, &testhelper.StreamImpl{Reader: src.read}, v(stream.MinorBase), true, false)

	p := make([]byte, 8)
	n, err := s.ReadAll(p)
	if n != 8 || err != nil {
		t.Fatalf("returned (%d, %v) instead of (8, nil)", n, err)
	}
	if string(p) != "abcdefgh" {
		t.Errorf("read %q instead of the full payload", p)
	}
}

func TestReadAllStopsAtEnd(t *testing.T) {
	src := &feed{data: []byte("abc"), chunk: 3}
	s := mustInit(t, &testhelper.StreamImpl{Reader: src.read}, v(stream.MinorBase), true, false)

	p := make([]byte, 8)
	n, err := s.ReadAll(p)
	if n != 3 || err != nil {
		t.Errorf("returned (%d, %v) instead of (3, nil)", n, err)
	}
}

func TestReadAllKeepsPartialProgress(t *testing.T) {
	calls := 0
	be := &testhelper.StreamImpl{Reader: func(p []byte) (int, error) {
		calls++
		if calls == 1 {
			return copy(p, "abc"), nil
		}
		return 0, strErrForTest()
	}}
	s := mustInit(t, be, v(stream.MinorBase), true, false)

	n, err := s.ReadAll(make([]byte, 8))
	if n != 3 || err != nil {
		t.Errorf("returned (%d, %v) instead of (3, nil)", n, err)
	}
}

func strErrForTest() error {
	return ioerr.New(ioerr.SubsysNet, ioerr.TargetStream, ioerr.OpReading, ioerr.CompTransfer, ioerr.StateUnexpected)
}

func TestReadExactly(t *testing.T) {
	t.Run("completes across partials", func(t *testing.T) {
		src := &feed{data: []byte("abcdefgh"), chunk: 3}
		s := mustInit(t, &testhelper.StreamImpl{Reader: src.read}, v(stream.MinorBase), true, false)

		p := make([]byte, 8)
		if err := s.ReadExactly(p); err != nil {
			t.Fatalf("returned unexpected error: %v", err)
		}
		if string(p) != "abcdefgh" {
			t.Errorf("filled %q instead of the full payload", p)
		}
	})
	t.Run("short stream is incomplete", func(t *testing.T) {
		src := &feed{data: []byte("abc"), chunk: 3}
		s := mustInit(t, &testhelper.StreamImpl{Reader: src.read}, v(stream.MinorBase), true, false)

		if err := s.ReadExactly(make([]byte, 8)); !ioerr.IsIncomplete(err) {
			t.Errorf("returned %v instead of an incomplete transfer", err)
		}
	})
	t.Run("zero length succeeds without I/O", func(t *testing.T) {
		calls := 0
		be := &testhelper.StreamImpl{Reader: func(p []byte) (int, error) {
			calls++
			return len(p), nil
		}}
		s := mustInit(t, be, v(stream.MinorBase), true, false)

		if err := s.ReadExactly(nil); err != nil {
			t.Errorf("returned %v instead of nil", err)
		}
		if calls != 0 {
			t.Errorf("backend saw %d reads instead of none", calls)
		}
	})
}

func TestWriteAll(t *testing.T) {
	var sink []byte
	be := &testhelper.StreamImpl{Writer: func(p []byte) (int, error) {
		n := len(p)
		if n > 3 {
			n = 3
		}
		sink = append(sink, p[:n]...)
		return n, nil
	}}
	s := mustInit(t, be, v(stream.MinorBase), false, true)

	n, err := s.WriteAll([]byte("abcdefgh"))
	if n != 8 || err != nil {
		t.Fatalf("returned (%d, %v) instead of (8, nil)", n, err)
	}
	if string(sink) != "abcdefgh" {
		t.Errorf("backend received %q instead of the full payload", sink)
	}
}

// TestWriteAllLateErrorSurfaces pins the write-side asymmetry with the
// read side: a failure after progress is reported, not swallowed.
func TestWriteAllLateErrorSurfaces(t *testing.T) {
	calls := 0
	be := &testhelper.StreamImpl{Writer: func(p []byte) (int, error) {
		calls++
		if calls == 1 {
			return 3, nil
		}
		return 0, strErrForTest()
	}}
	s := mustInit(t, be, v(stream.MinorBase), false, true)

	n, err := s.WriteAll([]byte("abcdefgh"))
	if n != 3 || err == nil {
		t.Errorf("returned (%d, %v) instead of (3, error)", n, err)
	}
}

func TestTimedReadAllBudgets(t *testing.T) {
	var tms []*timeout.Timeout
	be := &testhelper.TimedStreamImpl{
		TimedReader: func(p []byte, tm *timeout.Timeout) (int, error) {
			tms = append(tms, tm)
			if len(tms) == 1 {
				return copy(p, "abc"), nil
			}
			return 0, nil
		},
	}
	s := mustInit(t, be, v(stream.MinorTimed), true, false)

	tm := timeout.New(100)
	n, err := s.TimedReadAll(make([]byte, 8), tm)
	if n != 3 || err != nil {
		t.Fatalf("returned (%d, %v) instead of (3, nil)", n, err)
	}
	if len(tms) != 2 {
		t.Fatalf("backend saw %d reads instead of 2", len(tms))
	}
	if tms[0] != tm {
		t.Error("first read did not carry the caller's budget")
	}
	if tms[1] == nil || tms[1].Duration() != 0 {
		t.Error("follow-up read was allowed to wait")
	}
}

func TestTimedLoopsRequireTimedBackend(t *testing.T) {
	s := mustInit(t, &testhelper.StreamImpl{}, v(stream.MinorBase), true, true)

	tm := timeout.New(0)
	if _, err := s.TimedReadAll(make([]byte, 4), tm); !ioerr.IsBadVersion(err) {
		t.Errorf("TimedReadAll returned %v instead of a version error", err)
	}
	if err := s.TimedReadExactly(make([]byte, 4), tm); !ioerr.IsBadVersion(err) {
		t.Errorf("TimedReadExactly returned %v instead of a version error", err)
	}
	if _, err := s.TimedWriteAll(make([]byte, 4), tm); !ioerr.IsBadVersion(err) {
		t.Errorf("TimedWriteAll returned %v instead of a version error", err)
	}
}
