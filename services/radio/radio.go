// Package radio owns the wireless side of the command interface. The GATT
// binding (gatt.go) turns stack callbacks into a closed set of events
// (connected, disconnected, written) published on the bus; the Adapter
// consumes them and runs each through one transition function, so the device
// state machine never touches the wireless library's callback mechanism
// directly.
//
// States: ADVERTISING <-> CONNECTED. There is no terminal state; a disconnect
// always restarts advertising, without backoff, because advertising is idle-safe.
package radio

import (
	"context"
	"io"
	"strings"

	"commtest-go/bus"
	"commtest-go/devstate"
	"commtest-go/errcode"
	"commtest-go/types"
)

var topicRadioEvent = bus.T("radio", "event")

// PublishEvent puts one wireless event on the bus. Link implementations call
// this from stack callbacks; the bus's buffered drop-oldest delivery keeps
// those callbacks quick.
func PublishEvent(conn *bus.Connection, ev types.RadioEvent) {
	conn.Publish(conn.NewMessage(topicRadioEvent, ev, false))
}

// Link is what the adapter and dispatcher need from the concrete radio.
type Link interface {
	Connected() bool
	Notify(p []byte) error
	RestartAdvertising() error
}

// Dispatcher is the command sink the adapter feeds.
type Dispatcher interface {
	Dispatch(line string, origin types.Origin) string
}

type Adapter struct {
	state *devstate.State
	disp  Dispatcher
	link  Link
	con   io.Writer
}

func NewAdapter(state *devstate.State, disp Dispatcher, link Link, con io.Writer) *Adapter {
	return &Adapter{state: state, disp: disp, link: link, con: con}
}

// Start launches the event loop consuming radio events from the bus.
func (a *Adapter) Start(ctx context.Context, conn *bus.Connection) {
	go a.serviceLoop(ctx, conn)
}

func (a *Adapter) serviceLoop(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(topicRadioEvent)
	defer conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			println("Info: radio service stopping")
			return
		case msg := <-sub.Channel():
			if ev, ok := msg.Payload.(types.RadioEvent); ok {
				a.Apply(ev)
			}
		}
	}
}

// Apply runs one wireless event through the state machine.
func (a *Adapter) Apply(ev types.RadioEvent) {
	switch ev.Kind {
	case types.RadioConnected:
		a.state.SetRadioConnected(true)
		a.say("[BLE] Client connected")

	case types.RadioDisconnected:
		a.state.SetRadioConnected(false)
		a.say("[BLE] Client disconnected")
		if err := a.link.RestartAdvertising(); err != nil {
			a.say("[BLE] Advertising restart failed: " + string(errcode.Of(err)))
		}

	case types.RadioWritten:
		// Every write counts, even an empty payload; only non-empty
		// trimmed input reaches the dispatcher.
		a.state.IncRadio()
		line := strings.TrimSpace(string(ev.Payload))
		if line == "" {
			return
		}
		a.say("[BLE] Received: " + line)

		resp := a.disp.Dispatch(line, types.OriginRadio)
		if resp == "" || !a.state.RadioConnected() {
			return
		}
		if err := a.link.Notify([]byte(resp)); err != nil {
			a.say("[BLE] Notify failed: " + string(errcode.Of(err)))
		}
	}
}

func (a *Adapter) say(s string) {
	_, _ = io.WriteString(a.con, s)
	_, _ = io.WriteString(a.con, "\n")
}
