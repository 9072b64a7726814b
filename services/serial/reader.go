// Package serial adapts a byte-oriented port into the firmware's line-oriented
// command path: a bounded reader goroutine splits inbound bytes into lines,
// and a polled service loop feeds them to the dispatcher.
package serial

import (
	"context"
	"time"

	"commtest-go/x/mathx"
)

// Port is the transport contract for a serial device. Implementations live in
// the platform package (uartx on MCU builds, go.bug.st/serial or stdio on the
// host).
type Port interface {
	// TX
	Write(p []byte) (int, error)

	// RX
	Buffered() int
	Read(p []byte) (int, error)
	Readable() <-chan struct{}
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// Line is one newline-terminated unit of input. Empty lines are real input
// and are delivered; they still count against the serial message counter.
type Line struct {
	Text string
	TS   time.Time
}

type ReaderCfg struct {
	Port    Port
	MaxLine int // clamp 16..256; bytes beyond the limit are discarded
}

type Reader struct {
	outQ chan Line
}

func NewReader(outBuf int) *Reader {
	if outBuf <= 0 {
		outBuf = 16
	}
	return &Reader{outQ: make(chan Line, outBuf)}
}

func (r *Reader) Lines() <-chan Line { return r.outQ }

// Register starts a bounded reader goroutine for the port. Returns cancel.
// Bytes accumulate until LF; CR is ignored; a bare LF emits an empty line.
func (r *Reader) Register(ctx context.Context, cfg ReaderCfg) (func(), error) {
	max := mathx.Clamp(cfg.MaxLine, 16, 256)
	cctx, cancel := context.WithCancel(ctx)

	go func() {
		buf := make([]byte, max)
		var line []byte

		emit := func(now time.Time) {
			text := string(line)
			line = line[:0]
			select {
			case r.outQ <- Line{Text: text, TS: now}:
			default:
				// drop if consumer is slow
			}
		}

		for {
			// Wait for the port only when nothing is already buffered, so
			// a read smaller than the backlog never stalls the loop.
			if cfg.Port.Buffered() == 0 {
				select {
				case <-cctx.Done():
					return
				case <-cfg.Port.Readable():
				}
			} else {
				select {
				case <-cctx.Done():
					return
				default:
				}
			}

			// Bound the blocking wait to assist shutdown.
			rctx, rcancel := context.WithTimeout(cctx, 250*time.Millisecond)
			n, _ := cfg.Port.RecvSomeContext(rctx, buf)
			rcancel()
			if n <= 0 {
				continue
			}
			now := time.Now()
			for i := 0; i < n; i++ {
				switch buf[i] {
				case '\n':
					emit(now)
				case '\r':
					// ignore
				default:
					if len(line) < max {
						line = append(line, buf[i])
					}
				}
			}
		}
	}()

	return cancel, nil
}
