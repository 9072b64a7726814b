//go:build !(rp2040 || rp2350)

// Command selftest exercises the full command stack on the host: a scripted
// serial session through a pipe-backed port, plus radio events injected over
// the bus. Prints PASS/FAIL per check and exits non-zero on any failure.
package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"commtest-go/bus"
	"commtest-go/devstate"
	"commtest-go/dispatch"
	"commtest-go/platform"
	"commtest-go/services/radio"
	serialio "commtest-go/services/serial"
	"commtest-go/types"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type memLink struct {
	mu        sync.Mutex
	connected bool
	notified  []string
	restarts  int
}

func (l *memLink) setConnected(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = v
}

func (l *memLink) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *memLink) Notify(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notified = append(l.notified, string(p))
	return nil
}

func (l *memLink) RestartAdvertising() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restarts++
	return nil
}

func (l *memLink) snapshot() ([]string, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.notified...), l.restarts
}

var failed bool

func check(name string, ok bool) {
	if ok {
		println("PASS " + name)
	} else {
		println("FAIL " + name)
		failed = true
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func main() {
	println("[selftest] bringing up command stack")

	ctx := context.Background()
	b := bus.NewBus(8)
	state := devstate.New()
	con := &lockedBuffer{}
	link := &memLink{}

	disp := dispatch.New(state, con, link, platform.ReadMemInfo)
	radio.NewAdapter(state, disp, link, con).Start(ctx, b.NewConnection("radio"))

	pr, pw := io.Pipe()
	port := platform.NewIOPort(pr, io.Discard)
	reader := serialio.NewReader(8)
	if _, err := reader.Register(ctx, serialio.ReaderCfg{Port: port, MaxLine: 128}); err != nil {
		println("FAIL register reader: " + err.Error())
		os.Exit(1)
	}
	serialio.NewService(state, disp, 10*time.Millisecond).
		Start(ctx, nil, reader.Lines())

	// Serial session: help, status, echo, and a blank line.
	if _, err := pw.Write([]byte("h\ns\nxyz123\n\n")); err != nil {
		println("FAIL write script: " + err.Error())
		os.Exit(1)
	}
	check("serial lines counted", waitFor(func() bool { return state.SerialCount() == 4 }))
	out := con.String()
	check("status banner printed", strings.Contains(out, "=== Connection Status ==="))
	check("help banner printed", strings.Contains(out, "Communication Test ==="))
	check("serial echo printed", strings.Contains(out, "Echo: xyz123"))

	// Radio session: connect, echo over the link, test message, disconnect.
	src := b.NewConnection("selftest")
	radio.PublishEvent(src, types.RadioEvent{Kind: types.RadioConnected})
	link.setConnected(true)
	check("connected flag set", waitFor(state.RadioConnected))

	radio.PublishEvent(src, types.RadioEvent{Kind: types.RadioWritten, Payload: []byte("hello")})
	check("radio write counted", waitFor(func() bool { return state.RadioCount() == 1 }))
	check("radio echo notified", waitFor(func() bool {
		msgs, _ := link.snapshot()
		for _, m := range msgs {
			if m == "Echo: hello" {
				return true
			}
		}
		return false
	}))

	if _, err := pw.Write([]byte("t\n")); err != nil {
		println("FAIL write test command: " + err.Error())
		os.Exit(1)
	}
	check("test message counted", waitFor(func() bool { return state.TestCount() == 1 }))
	check("test message notified", waitFor(func() bool {
		msgs, _ := link.snapshot()
		for _, m := range msgs {
			if strings.Contains(m, "Test message #1") {
				return true
			}
		}
		return false
	}))

	radio.PublishEvent(src, types.RadioEvent{Kind: types.RadioDisconnected})
	check("advertising restarted", waitFor(func() bool {
		_, n := link.snapshot()
		return n == 1
	}))
	check("connected flag cleared", waitFor(func() bool { return !state.RadioConnected() }))

	if failed {
		println("[selftest] FAILED")
		os.Exit(1)
	}
	println("[selftest] all checks passed")
}
