package serial

import (
	"context"
	"sync"
	"testing"
	"time"
)

// --- minimal fake port implementing Port ---

type fakePort struct {
	mu sync.Mutex
	rx []byte
	rd chan struct{}
}

func newFakePort() *fakePort { return &fakePort{rd: make(chan struct{}, 1)} }

func (f *fakePort) inject(b []byte) {
	f.mu.Lock()
	f.rx = append(f.rx, b...)
	if len(f.rd) == 0 {
		f.rd <- struct{}{}
	}
	f.mu.Unlock()
}

func (f *fakePort) Write(p []byte) (int, error) { return len(p), nil }
func (f *fakePort) Buffered() int {
	f.mu.Lock()
	n := len(f.rx)
	f.mu.Unlock()
	return n
}
func (f *fakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	n := copy(p, f.rx)
	f.rx = f.rx[n:]
	f.mu.Unlock()
	return n, nil
}
func (f *fakePort) Readable() <-chan struct{} { return f.rd }
func (f *fakePort) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	if f.Buffered() > 0 {
		return f.Read(p)
	}
	select {
	case <-f.rd:
		return f.Read(p)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func recvLine(t *testing.T, ch <-chan Line, d time.Duration) Line {
	t.Helper()
	select {
	case ln := <-ch:
		return ln
	case <-time.After(d):
		t.Fatal("timeout waiting for line")
		return Line{}
	}
}

func expectNoLine(t *testing.T, ch <-chan Line) {
	t.Helper()
	select {
	case ln := <-ch:
		t.Fatalf("unexpected line %q", ln.Text)
	case <-time.After(50 * time.Millisecond):
	}
}

func startReader(t *testing.T, p *fakePort, maxLine int) *Reader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r := NewReader(8)
	stop, err := r.Register(ctx, ReaderCfg{Port: p, MaxLine: maxLine})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	t.Cleanup(stop)
	return r
}

func TestReaderSplitsLines(t *testing.T) {
	p := newFakePort()
	r := startReader(t, p, 64)

	p.inject([]byte("hello\nworld\n"))

	if ln := recvLine(t, r.Lines(), time.Second); ln.Text != "hello" {
		t.Errorf("first line %q", ln.Text)
	}
	if ln := recvLine(t, r.Lines(), time.Second); ln.Text != "world" {
		t.Errorf("second line %q", ln.Text)
	}
}

func TestReaderIgnoresCR(t *testing.T) {
	p := newFakePort()
	r := startReader(t, p, 64)

	p.inject([]byte("abc\r\n"))

	if ln := recvLine(t, r.Lines(), time.Second); ln.Text != "abc" {
		t.Errorf("line %q", ln.Text)
	}
}

func TestReaderEmitsEmptyLine(t *testing.T) {
	p := newFakePort()
	r := startReader(t, p, 64)

	p.inject([]byte("\n"))

	if ln := recvLine(t, r.Lines(), time.Second); ln.Text != "" {
		t.Errorf("line %q, want empty", ln.Text)
	}
}

func TestReaderWaitsForNewline(t *testing.T) {
	p := newFakePort()
	r := startReader(t, p, 64)

	p.inject([]byte("partial"))
	expectNoLine(t, r.Lines())

	p.inject([]byte("\n"))
	if ln := recvLine(t, r.Lines(), time.Second); ln.Text != "partial" {
		t.Errorf("line %q", ln.Text)
	}
}

func TestReaderTruncatesOverlongLine(t *testing.T) {
	p := newFakePort()
	r := startReader(t, p, 16)

	long := make([]byte, 40)
	for i := range long {
		long[i] = 'a'
	}
	p.inject(append(long, '\n'))

	ln := recvLine(t, r.Lines(), time.Second)
	if len(ln.Text) != 16 {
		t.Errorf("line length %d, want 16", len(ln.Text))
	}
}

func TestReaderSplitAcrossChunks(t *testing.T) {
	p := newFakePort()
	r := startReader(t, p, 64)

	p.inject([]byte("he"))
	time.Sleep(10 * time.Millisecond)
	p.inject([]byte("llo\n"))

	if ln := recvLine(t, r.Lines(), time.Second); ln.Text != "hello" {
		t.Errorf("line %q", ln.Text)
	}
}
