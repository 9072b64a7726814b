// Package heartbeat emits the periodic unsolicited status line so an operator
// can see the firmware is alive without sending a command.
package heartbeat

import (
	"context"
	"io"
	"time"

	"commtest-go/bus"
	"commtest-go/devstate"
	"commtest-go/x/conv"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

// DefaultInterval is the heartbeat cadence when no config overrides it.
const DefaultInterval = 30 * time.Second

type Service struct {
	state    *devstate.State
	con      io.Writer
	interval time.Duration
}

func NewService(state *devstate.State, con io.Writer, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{state: state, con: con, interval: interval}
}

// Start launches the heartbeat loop. conn may be nil when no runtime
// reconfiguration is wanted.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	var cfgCh <-chan *bus.Message
	if conn != nil {
		cfgSub := conn.Subscribe(topicConfigHeartbeat)
		defer conn.Unsubscribe(cfgSub)
		cfgCh = cfgSub.Channel()
	}

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			s.emit()
		case msg := <-cfgCh:
			// Change tick interval if needed.
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"]; ok {
					if seconds, ok := iv.(float64); ok && seconds > 0 {
						s.interval = time.Duration(seconds * float64(time.Second))
						tick.Reset(s.interval)
					}
				}
			}
		}
	}
}

func (s *Service) emit() {
	up := conv.Utoa(s.state.UptimeSeconds())
	s.say("\n[Periodic Update] System running - " + up + "s uptime")
	s.say("Connections: USB=Active, BLE=" + bleWord(s.state.RadioConnected()))
	s.state.MarkStatusEmit()
}

func (s *Service) say(line string) {
	_, _ = io.WriteString(s.con, line)
	_, _ = io.WriteString(s.con, "\n")
}

func bleWord(connected bool) string {
	if connected {
		return "Connected"
	}
	return "Advertising"
}
