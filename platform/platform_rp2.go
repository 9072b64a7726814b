//go:build rp2040 || rp2350

package platform

import (
	"context"
	"io"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	serialio "commtest-go/services/serial"
)

// consoleWriter sends firmware logs to the USB CDC console.
type consoleWriter struct{ u drivers.UART }

func (w consoleWriter) Write(p []byte) (int, error) { return w.u.Write(p) }

// Console returns the operator console writer for MCU builds.
func Console() io.Writer { return consoleWriter{u: machine.Serial} }

// DefaultPortName selects the hardware UART used for the command interface.
func DefaultPortName() string { return "uart0" }

// rp2Port adapts uartx to the serial port contract.
type rp2Port struct{ u *uartx.UART }

var _ serialio.Port = (*rp2Port)(nil)

func (p *rp2Port) Write(b []byte) (int, error) { return p.u.Write(b) }
func (p *rp2Port) Buffered() int               { return p.u.Buffered() }
func (p *rp2Port) Read(b []byte) (int, error)  { return p.u.Read(b) }
func (p *rp2Port) Readable() <-chan struct{}   { return p.u.Readable() }
func (p *rp2Port) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	return p.u.RecvSomeContext(ctx, b)
}

// OpenPort configures the named hardware UART at the given baud.
// Pin mapping follows the uartx defaults for the board.
func OpenPort(name string, baud int) (serialio.Port, error) {
	var hw *uartx.UART
	switch name {
	case "uart1":
		hw = uartx.UART1
	default:
		hw = uartx.UART0
	}
	_ = hw.Configure(uartx.UARTConfig{BaudRate: uint32(baud)})
	return &rp2Port{u: hw}, nil
}
