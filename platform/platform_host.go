//go:build !(rp2040 || rp2350)

package platform

import (
	"io"
	"os"

	bugst "go.bug.st/serial"

	"commtest-go/errcode"
	serialio "commtest-go/services/serial"
)

// Console returns the operator console writer for host builds.
func Console() io.Writer { return os.Stdout }

// DefaultPortName resolves the serial device from the environment; empty
// means stdio.
func DefaultPortName() string { return os.Getenv("COMMTEST_PORT") }

// OpenPort opens the named serial device at the given baud (8N1, no flow
// control), or falls back to stdio when name is empty.
func OpenPort(name string, baud int) (serialio.Port, error) {
	if name == "" {
		return NewIOPort(os.Stdin, os.Stdout), nil
	}
	mode := &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	p, err := bugst.Open(name, mode)
	if err != nil {
		return nil, &errcode.E{C: errcode.PortClosed, Op: "open " + name, Err: err}
	}
	return NewIOPort(p, p), nil
}
