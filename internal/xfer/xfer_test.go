package xfer_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/byteio/go-byteio/internal/xfer"
	"github.com/byteio/go-byteio/ioerr"
	"github.com/byteio/go-byteio/timeout"
)

var (
	errIncomplete = errors.New("stalled transfer")
	errBackend    = errors.New("backend failure")
)

func timeoutErr() error {
	return ioerr.New(ioerr.SubsysNet, ioerr.TargetConnection, ioerr.OpReading, ioerr.CompTimeout, ioerr.StateExhausted)
}

// out scripts one primitive call: either data delivered or an error.
type out struct {
	data string
	err  error
}

// script replays outs in order and records what each call saw. Calls
// past the end return a zero count.
type script struct {
	outs  []out
	calls int
	offs  []int
	tms   []*timeout.Timeout
}

func (s *script) take(off int, p []byte, tm *timeout.Timeout) (int, error) {
	s.offs = append(s.offs, off)
	s.tms = append(s.tms, tm)
	if s.calls >= len(s.outs) {
		return 0, nil
	}
	o := s.outs[s.calls]
	s.calls++
	if o.err != nil {
		return 0, o.err
	}
	return copy(p, o.data), nil
}

func (s *script) step() xfer.Step {
	return func(off int, p []byte) (int, error) {
		return s.take(off, p, nil)
	}
}

func (s *script) timedStep() xfer.TimedStep {
	return s.take
}

func TestReadAll(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		outs      []out
		timed     bool
		wantN     int
		wantErr   error
		wantBytes string
		wantOffs  []int
	}{
		{
			name: "full first read", size: 5,
			outs:  []out{{data: "hello"}},
			wantN: 5, wantBytes: "hello", wantOffs: []int{0},
		},
		{
			name: "end of input on first read", size: 5,
			outs:  []out{{data: ""}},
			wantN: 0, wantOffs: []int{0},
		},
		{
			name: "error on first read surfaces", size: 5,
			outs:    []out{{err: errBackend}},
			wantErr: errBackend, wantOffs: []int{0},
		},
		{
			name: "partial reads accumulate", size: 6,
			outs:  []out{{data: "ab"}, {data: "cd"}, {data: "ef"}},
			wantN: 6, wantBytes: "abcdef", wantOffs: []int{0, 2, 4},
		},
		{
			name: "error after progress is discarded", size: 6,
			outs:  []out{{data: "abc"}, {err: errBackend}},
			wantN: 3, wantBytes: "abc", wantOffs: []int{0, 3},
		},
		{
			name: "zero count stops the loop", size: 6,
			outs:  []out{{data: "abcd"}, {data: ""}},
			wantN: 4, wantBytes: "abcd", wantOffs: []int{0, 4},
		},
		{
			name: "timed follow-ups", size: 6, timed: true,
			outs:  []out{{data: "abc"}, {data: "def"}},
			wantN: 6, wantBytes: "abcdef", wantOffs: []int{0, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &script{outs: tt.outs}
			p := make([]byte, tt.size)
			var timed xfer.TimedStep
			if tt.timed {
				timed = s.timedStep()
			}
			n, err := xfer.ReadAll(p, s.step(), timed)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error mismatched, actual then expected: %v %v", err, tt.wantErr)
			}
			if n != tt.wantN {
				t.Errorf("count mismatched, actual then expected: %d %d", n, tt.wantN)
			}
			if got := string(p[:n]); got != tt.wantBytes {
				t.Errorf("bytes mismatched, actual then expected: %q %q", got, tt.wantBytes)
			}
			if diff := cmp.Diff(tt.wantOffs, s.offs); diff != "" {
				t.Errorf("offsets mismatched (-expected +actual):\n%s", diff)
			}
		})
	}
}

// TestReadAllTimedFollowUpsDoNotWait checks that only the first
// iteration may block: every later one carries a zero budget.
func TestReadAllTimedFollowUpsDoNotWait(t *testing.T) {
	s := &script{outs: []out{{data: "ab"}, {data: "cd"}}}
	p := make([]byte, 4)
	if _, err := xfer.ReadAll(p, s.step(), s.timedStep()); err != nil {
		t.Fatalf("returned unexpected error: %v", err)
	}
	if len(s.tms) != 2 {
		t.Fatalf("saw %d calls instead of 2", len(s.tms))
	}
	if s.tms[0] != nil {
		t.Error("first read was handed a budget; it must be the plain primitive")
	}
	if s.tms[1] == nil || s.tms[1].Duration() != 0 {
		t.Error("follow-up read did not carry a zero budget")
	}
}

func TestTimedReadAll(t *testing.T) {
	callerTM := timeout.New(0)
	s := &script{outs: []out{{data: "ab"}, {data: "cd"}}}
	p := make([]byte, 4)
	n, err := xfer.TimedReadAll(p, callerTM, s.timedStep())
	if err != nil {
		t.Fatalf("returned unexpected error: %v", err)
	}
	if n != 4 || string(p) != "abcd" {
		t.Errorf("read %d %q instead of 4 %q", n, p[:n], "abcd")
	}
	if s.tms[0] != callerTM {
		t.Error("first read did not receive the caller's budget")
	}
	if s.tms[1] == nil || s.tms[1].Duration() != 0 {
		t.Error("follow-up read did not carry a zero budget")
	}
}

func TestTimedReadAllFirstErrorSurfaces(t *testing.T) {
	s := &script{outs: []out{{err: errBackend}}}
	p := make([]byte, 4)
	n, err := xfer.TimedReadAll(p, timeout.New(0), s.timedStep())
	if n != 0 || !errors.Is(err, errBackend) {
		t.Errorf("returned (%d, %v) instead of (0, %v)", n, err, errBackend)
	}
}

func TestReadExactly(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		outs    []out
		wantErr error
	}{
		{"zero-length request", 0, nil, nil},
		{"single read", 4, []out{{data: "abcd"}}, nil},
		{"chunked", 6, []out{{data: "ab"}, {data: "cd"}, {data: "ef"}}, nil},
		{"stall is incomplete", 6, []out{{data: "abc"}, {data: ""}}, errIncomplete},
		{"interior timeout retried", 4, []out{{data: "ab"}, {err: timeoutErr()}, {data: "cd"}}, nil},
		{"other errors abort", 4, []out{{data: "ab"}, {err: errBackend}}, errBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &script{outs: tt.outs}
			p := make([]byte, tt.size)
			err := xfer.ReadExactly(p, s.step(), errIncomplete)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error mismatched, actual then expected: %v %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimedReadExactlyTimeoutIsFinal(t *testing.T) {
	s := &script{outs: []out{{data: "ab"}, {err: timeoutErr()}}}
	p := make([]byte, 4)
	err := xfer.TimedReadExactly(p, timeout.New(0), s.timedStep(), errIncomplete)
	if !ioerr.IsTimeout(err) {
		t.Errorf("returned %v instead of the timeout", err)
	}
}

func TestTimedReadExactlyNilBudgetRetriesTimeouts(t *testing.T) {
	s := &script{outs: []out{{data: "ab"}, {err: timeoutErr()}, {data: "cd"}}}
	p := make([]byte, 4)
	if err := xfer.TimedReadExactly(p, nil, s.timedStep(), errIncomplete); err != nil {
		t.Errorf("returned unexpected error: %v", err)
	}
	if string(p) != "abcd" {
		t.Errorf("bytes mismatched, actual then expected: %q %q", p, "abcd")
	}
}

func TestWriteAll(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		outs    []out
		wantN   int
		wantErr error
	}{
		{"full first write", 5, []out{{data: "hello"}}, 5, nil},
		{"partial writes accumulate", 6, []out{{data: "ab"}, {data: "cd"}, {data: "ef"}}, 6, nil},
		{"stall synthesizes incomplete", 6, []out{{data: "abc"}, {data: ""}}, 3, errIncomplete},
		{"first error surfaces", 5, []out{{err: errBackend}}, 0, errBackend},
		// the write side never discards a late error, unlike ReadAll
		{"late error surfaces with the total", 6, []out{{data: "abc"}, {err: errBackend}}, 3, errBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &script{outs: tt.outs}
			p := make([]byte, tt.size)
			n, err := xfer.WriteAll(p, s.step(), nil, errIncomplete)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error mismatched, actual then expected: %v %v", err, tt.wantErr)
			}
			if n != tt.wantN {
				t.Errorf("total mismatched, actual then expected: %d %d", n, tt.wantN)
			}
		})
	}
}

func TestTimedWriteAll(t *testing.T) {
	callerTM := timeout.New(0)
	s := &script{outs: []out{{data: "ab"}, {data: "cd"}}}
	p := make([]byte, 4)
	n, err := xfer.TimedWriteAll(p, callerTM, s.timedStep(), errIncomplete)
	if err != nil {
		t.Fatalf("returned unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("total %d instead of 4", n)
	}
	if s.tms[0] != callerTM {
		t.Error("first write did not receive the caller's budget")
	}
	if s.tms[1] == nil || s.tms[1].Duration() != 0 {
		t.Error("follow-up write did not carry a zero budget")
	}
}
