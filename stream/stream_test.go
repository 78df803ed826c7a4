package stream_test

import (
	"io"
	"testing"

	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/stream"
	"github.com/byteio/go-byteio/testhelper"
	"github.com/byteio/go-byteio/timeout"
)

func mustInit(t *testing.T, be stream.Backend, ver stream.Version, canRead, canWrite bool) *stream.Stream {
	t.Helper()
	s := &stream.Stream{}
	if err := stream.Init(s, be, ver, canRead, canWrite); err != nil {
		t.Fatalf("init returned unexpected error: %v", err)
	}
	return s
}

func v(minor uint32) stream.Version {
	return stream.Version{Major: stream.CurrentMajor, Minor: minor}
}

func TestInit(t *testing.T) {
	base := &testhelper.StreamImpl{}
	timed := &testhelper.TimedStreamImpl{}

	tests := []struct {
		name      string
		s         *stream.Stream
		be        stream.Backend
		ver       stream.Version
		wantErr   bool
		wantState ioerr.State
	}{
		{"minor 0", &stream.Stream{}, base, v(stream.MinorBase), false, 0},
		{"minor 1", &stream.Stream{}, timed, v(stream.MinorTimed), false, 0},
		{"nil stream", nil, base, v(0), true, ioerr.StateNull},
		{"nil backend", &stream.Stream{}, nil, v(0), true, ioerr.StateNull},
		{"major zero", &stream.Stream{}, base, stream.Version{Major: 0}, true, ioerr.StateInvalid},
		{"major too new", &stream.Stream{}, base, stream.Version{Major: 2}, true, ioerr.StateBadVersion},
		{"minor too new", &stream.Stream{}, timed, v(2), true, ioerr.StateBadVersion},
		{"minor 1 without the timed capability", &stream.Stream{}, base, v(stream.MinorTimed), true, ioerr.StateNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := stream.Init(tt.s, tt.be, tt.ver, true, true)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("returned unexpected error: %v", err)
				}
				return
			}
			e, ok := err.(*ioerr.Error)
			if !ok {
				t.Fatalf("returned %v instead of a structured error", err)
			}
			if e.State != tt.wantState {
				t.Errorf("state mismatched, actual then expected: %s %s", e.State, tt.wantState)
			}
		})
	}
}

func TestUninitializedRefusesDispatch(t *testing.T) {
	var s stream.Stream
	if err := s.Destroy(); !ioerr.IsBadVersion(err) {
		t.Errorf("Destroy returned %v instead of a version error", err)
	}
}

func TestLifetime(t *testing.T) {
	closed := 0
	be := &testhelper.StreamImpl{Closer: func() error {
		closed++
		return nil
	}}
	s := mustInit(t, be, v(stream.MinorBase), true, true)

	if err := s.AddRef(); err != nil {
		t.Fatalf("AddRef returned unexpected error: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("Release returned unexpected error: %v", err)
	}
	if closed != 0 {
		t.Fatal("stream torn down while still held")
	}
	if err := s.Release(); err != nil {
		t.Fatalf("final Release returned unexpected error: %v", err)
	}
	if closed != 1 {
		t.Errorf("backend closed %d times instead of once", closed)
	}
}

func TestAccessGates(t *testing.T) {
	reads, writes := 0, 0
	be := &testhelper.StreamImpl{
		Reader: func(p []byte) (int, error) { reads++; return 0, nil },
		Writer: func(p []byte) (int, error) { writes++; return len(p), nil },
	}

	wo := mustInit(t, be, v(stream.MinorBase), false, true)
	if _, err := wo.Read(make([]byte, 4)); !ioerr.IsNoPerm(err) {
		t.Errorf("Read returned %v instead of a permission refusal", err)
	}
	// the capability gate outranks buffer validation
	if _, err := wo.Read(nil); !ioerr.IsNoPerm(err) {
		t.Errorf("Read(nil) returned %v instead of a permission refusal", err)
	}

	ro := mustInit(t, be, v(stream.MinorBase), true, false)
	if _, err := ro.Write([]byte("x")); !ioerr.IsNoPerm(err) {
		t.Errorf("Write returned %v instead of a permission refusal", err)
	}
	if _, err := ro.Write(nil); !ioerr.IsNoPerm(err) {
		t.Errorf("empty Write returned %v instead of a permission refusal", err)
	}
	if reads != 0 || writes != 0 {
		t.Errorf("backend saw %d reads and %d writes instead of none", reads, writes)
	}
}

func TestBufferPreconditions(t *testing.T) {
	s := mustInit(t, &testhelper.StreamImpl{}, v(stream.MinorBase), true, true)

	_, err := s.Read(nil)
	if e, ok := err.(*ioerr.Error); !ok || e.Comp != ioerr.CompBuffer || e.State != ioerr.StateNull {
		t.Errorf("nil buffer returned %v instead of buffer null", err)
	}
	_, err = s.Read([]byte{})
	if e, ok := err.(*ioerr.Error); !ok || e.Comp != ioerr.CompBuffer || e.State != ioerr.StateInsufficient {
		t.Errorf("empty buffer returned %v instead of buffer insufficient", err)
	}
	n, err := s.Write([]byte{})
	if n != 0 || err != nil {
		t.Errorf("empty write returned (%d, %v) instead of (0, nil)", n, err)
	}
}

func TestReadNormalizesEOF(t *testing.T) {
	served := false
	be := &testhelper.StreamImpl{Reader: func(p []byte) (int, error) {
		if served {
			return 0, io.EOF
		}
		served = true
		return copy(p, "abc"), io.EOF
	}}
	s := mustInit(t, be, v(stream.MinorBase), true, false)

	p := make([]byte, 8)
	n, err := s.Read(p)
	if n != 3 || err != nil {
		t.Fatalf("final partial read returned (%d, %v) instead of (3, nil)", n, err)
	}
	n, err = s.Read(p)
	if n != 0 || err != nil {
		t.Errorf("read at end returned (%d, %v) instead of (0, nil)", n, err)
	}
}

func TestTimedFallback(t *testing.T) {
	plainReads := 0
	be := &testhelper.StreamImpl{Reader: func(p []byte) (int, error) {
		plainReads++
		return len(p), nil
	}}
	s := mustInit(t, be, v(stream.MinorBase), true, true)

	if _, err := s.TimedRead(make([]byte, 4), nil); err != nil {
		t.Fatalf("nil-budget read returned unexpected error: %v", err)
	}
	if plainReads != 1 {
		t.Fatalf("plain primitive saw %d reads instead of 1", plainReads)
	}
	if _, err := s.TimedRead(make([]byte, 4), timeout.New(0)); !ioerr.IsBadVersion(err) {
		t.Errorf("budgeted read returned %v instead of a version error", err)
	}
	if _, err := s.TimedWrite(make([]byte, 4), timeout.New(0)); !ioerr.IsBadVersion(err) {
		t.Errorf("budgeted write returned %v instead of a version error", err)
	}
}

func TestTimedDispatch(t *testing.T) {
	var seen *timeout.Timeout
	be := &testhelper.TimedStreamImpl{
		TimedReader: func(p []byte, tm *timeout.Timeout) (int, error) {
			seen = tm
			return len(p), nil
		},
	}
	s := mustInit(t, be, v(stream.MinorTimed), true, true)

	tm := timeout.New(0)
	if _, err := s.TimedRead(make([]byte, 4), tm); err != nil {
		t.Fatalf("returned unexpected error: %v", err)
	}
	if seen != tm {
		t.Error("backend did not receive the caller's budget")
	}
}
