// Package platform supplies the build-specific collaborators: serial ports,
// the console writer and heap sampling. Everything here is constructed and
// handed to the services explicitly.
package platform

import (
	"context"
	"io"
	"sync"

	serialio "commtest-go/services/serial"
)

// IOPort adapts any reader/writer pair to the serial port contract. A pump
// goroutine moves bytes from r into an internal buffer and signals Readable,
// so polling callers never block on the underlying reader.
type IOPort struct {
	w io.Writer

	mu sync.Mutex
	rx []byte
	rd chan struct{}
}

var _ serialio.Port = (*IOPort)(nil)

// NewIOPort starts the pump. w may be nil for a read-only port.
func NewIOPort(r io.Reader, w io.Writer) *IOPort {
	p := &IOPort{w: w, rd: make(chan struct{}, 1)}
	go p.pump(r)
	return p
}

func (p *IOPort) pump(r io.Reader) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.rx = append(p.rx, buf[:n]...)
			if len(p.rd) == 0 {
				p.rd <- struct{}{}
			}
			p.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (p *IOPort) Write(b []byte) (int, error) {
	if p.w == nil {
		return len(b), nil
	}
	return p.w.Write(b)
}

func (p *IOPort) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rx)
}

func (p *IOPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := copy(b, p.rx)
	p.rx = p.rx[n:]
	// Re-arm the signal if the caller's buffer was too small for the backlog.
	if len(p.rx) > 0 && len(p.rd) == 0 {
		p.rd <- struct{}{}
	}
	return n, nil
}

func (p *IOPort) Readable() <-chan struct{} { return p.rd }

func (p *IOPort) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	if p.Buffered() > 0 {
		return p.Read(b)
	}
	select {
	case <-p.rd:
		return p.Read(b)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
