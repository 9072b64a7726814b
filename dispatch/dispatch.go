// Package dispatch maps one trimmed command line to its action and response.
//
// The dispatcher owns all console output for recognized commands: banners and
// confirmations always land on the serial console no matter which transport
// delivered the command. The returned response is the originating transport's
// payload: the radio adapter notifies it to the peer, while the serial
// console has already received its copy as a side effect of the dispatch
// itself.
package dispatch

import (
	"io"
	"strings"

	"commtest-go/devstate"
	"commtest-go/errcode"
	"commtest-go/types"
	"commtest-go/x/conv"
)

// deviceTag appears in test messages and matches the advertised firmware.
const deviceTag = "XIAO ESP32S3"

// Link is the slice of the radio adapter the dispatcher needs: the `t`
// command pushes a notification and `r` forces advertising to restart.
type Link interface {
	Connected() bool
	Notify(p []byte) error
	RestartAdvertising() error
}

type Dispatcher struct {
	state *devstate.State
	con   io.Writer
	link  Link
	mem   types.MemReader
}

// New wires a dispatcher. mem may be nil, in which case the memory banner
// reports zeros.
func New(state *devstate.State, con io.Writer, link Link, mem types.MemReader) *Dispatcher {
	if mem == nil {
		mem = func() types.MemInfo { return types.MemInfo{} }
	}
	return &Dispatcher{state: state, con: con, link: link, mem: mem}
}

// Dispatch handles one command line. It never fails: unknown input is echoed,
// empty input is a no-op. The line is trimmed before matching.
func (d *Dispatcher) Dispatch(line string, origin types.Origin) string {
	line = strings.TrimSpace(line)

	switch line {
	case "":
		return ""
	case "h":
		d.PrintMenu()
		return "Help menu sent to USB Serial"
	case "s":
		d.PrintStatus()
		return "Status info sent to USB Serial"
	case "t":
		d.sendTestMessage()
		return "Test message sent"
	case "r":
		if err := d.link.RestartAdvertising(); err != nil {
			d.say("[BLE] Advertising restart failed: " + string(errcode.Of(err)))
		} else {
			d.say("[BLE] Advertising restarted")
		}
		return "BLE advertising restarted"
	case "c":
		d.printCounters()
		return "Counters sent to USB Serial"
	case "m":
		d.printMemoryInfo()
		return "Memory info sent to USB Serial"
	}

	resp := "Echo: " + line
	if origin == types.OriginSerial {
		// Serial gets its echo on the console; the radio peer gets the
		// returned response as a notification instead.
		d.say(resp)
	}
	return resp
}

// PrintMenu writes the help banner to the console.
func (d *Dispatcher) PrintMenu() {
	d.say("\n=== " + deviceTag + " Communication Test ===")
	d.say("Commands:")
	d.say("  h - Show this help menu")
	d.say("  s - Show connection status")
	d.say("  t - Send test message to all connected devices")
	d.say("  r - Restart BLE advertising")
	d.say("  c - Show message counters")
	d.say("  m - Show memory info")
	d.say("  Any other text will be echoed back")
	d.say("=========================================\n")
}

// PrintStatus writes the connection status banner to the console.
func (d *Dispatcher) PrintStatus() {
	d.say("\n=== Connection Status ===")
	d.say("USB Serial: Connected (you're reading this!)")
	d.say("BLE: " + bleStateWord(d.state.RadioConnected()))
	d.say("Uptime: " + conv.Utoa(d.state.UptimeSeconds()) + " seconds")
	d.say("Free heap: " + conv.Utoa(d.mem().FreeHeap) + " bytes")
	d.say("========================\n")
}

func (d *Dispatcher) printCounters() {
	d.say("\n=== Message Counters ===")
	d.say("USB messages received: " + conv.Utoa(uint64(d.state.SerialCount())))
	d.say("BLE messages: " + conv.Utoa(uint64(d.state.RadioCount())))
	d.say("Test messages sent: " + conv.Utoa(uint64(d.state.TestCount())))
	d.say("========================\n")
}

func (d *Dispatcher) printMemoryInfo() {
	m := d.mem()
	d.say("\n=== Memory Information ===")
	d.say("Free heap: " + conv.Utoa(m.FreeHeap) + " bytes")
	d.say("Largest free block: " + conv.Utoa(m.MaxAlloc) + " bytes")
	d.say("Total heap size: " + conv.Utoa(m.HeapSize) + " bytes")
	d.say("Free PSRAM: " + conv.Utoa(m.FreePSRAM) + " bytes")
	d.say("==========================\n")
}

func (d *Dispatcher) sendTestMessage() {
	n := d.state.IncTest()
	msg := "Test message #" + conv.Utoa(uint64(n)) + " from " + deviceTag

	d.say("[USB] Sending: " + msg)

	if d.link.Connected() {
		if err := d.link.Notify([]byte("[BLE] " + msg)); err != nil {
			d.say("[BLE] Send failed: " + string(errcode.Of(err)))
		} else {
			d.say("[BLE] Message sent")
		}
	} else {
		d.say("[BLE] No connection - message not sent")
	}
}

func (d *Dispatcher) say(s string) {
	_, _ = io.WriteString(d.con, s)
	_, _ = io.WriteString(d.con, "\n")
}

func bleStateWord(connected bool) string {
	if connected {
		return "Connected"
	}
	return "Advertising"
}
