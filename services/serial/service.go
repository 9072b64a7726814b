package serial

import (
	"context"
	"time"

	"commtest-go/bus"
	"commtest-go/devstate"
	"commtest-go/types"
	"commtest-go/x/mathx"
)

var topicConfigSerial = bus.T("config", "serial")

// Dispatcher is the command sink the service feeds.
type Dispatcher interface {
	Dispatch(line string, origin types.Origin) string
}

// Service drains buffered lines on a fixed poll interval and hands each one
// to the dispatcher tagged with origin SERIAL. A poll that finds nothing
// returns immediately; the interval bounds both latency and CPU usage.
type Service struct {
	state *devstate.State
	disp  Dispatcher
	poll  time.Duration
}

func NewService(state *devstate.State, disp Dispatcher, poll time.Duration) *Service {
	return &Service{
		state: state,
		disp:  disp,
		poll:  mathx.Clamp(poll, 10*time.Millisecond, time.Second),
	}
}

// Start launches the poll loop. conn may be nil when no runtime
// reconfiguration is wanted.
func (s *Service) Start(ctx context.Context, conn *bus.Connection, lines <-chan Line) {
	go s.serviceLoop(ctx, conn, lines)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, lines <-chan Line) {
	var cfgCh <-chan *bus.Message
	if conn != nil {
		cfgSub := conn.Subscribe(topicConfigSerial)
		defer conn.Unsubscribe(cfgSub)
		cfgCh = cfgSub.Channel()
	}

	tick := time.NewTicker(s.poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: serial service stopping")
			return
		case <-tick.C:
			s.drain(lines)
		case msg := <-cfgCh:
			if m, ok := msg.Payload.(map[string]any); ok {
				if v, ok := m["poll_ms"]; ok {
					if ms, ok := v.(float64); ok && ms > 0 {
						s.poll = mathx.Clamp(time.Duration(ms)*time.Millisecond,
							10*time.Millisecond, time.Second)
						tick.Reset(s.poll)
					}
				}
			}
		}
	}
}

// drain handles everything already buffered and returns without blocking.
func (s *Service) drain(lines <-chan Line) {
	for {
		select {
		case ln := <-lines:
			s.handle(ln)
		default:
			return
		}
	}
}

// handle counts the line (empty included) and dispatches it. The dispatcher
// writes any console output itself; the response needs no extra delivery on
// this transport.
func (s *Service) handle(ln Line) {
	s.state.IncSerial()
	_ = s.disp.Dispatch(ln.Text, types.OriginSerial)
}
