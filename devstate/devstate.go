// Package devstate is the firmware's single source of truth: connection
// status, message counters and heartbeat bookkeeping, shared between the
// polled serial path and the radio's asynchronous callbacks.
//
// Every field is individually atomic. Readers may observe counters from
// slightly different instants; no cross-field snapshot is promised, and none
// is needed. Counters are 32-bit unsigned and wrap silently on overflow.
package devstate

import (
	"sync/atomic"
	"time"

	"commtest-go/x/timex"
)

type State struct {
	radioConnected atomic.Bool
	serialMsgs     atomic.Uint32
	radioMsgs      atomic.Uint32
	testMsgs       atomic.Uint32

	lastStatusMs atomic.Int64 // unix ms of the last heartbeat emission

	bootedAt time.Time // immutable after New
}

func New() *State {
	return &State{bootedAt: time.Now()}
}

// RadioConnected reports whether a peer is currently connected.
func (s *State) RadioConnected() bool { return s.radioConnected.Load() }

// SetRadioConnected records a peer connect or disconnect.
func (s *State) SetRadioConnected(v bool) { s.radioConnected.Store(v) }

// IncSerial counts one received serial line and returns the new total.
func (s *State) IncSerial() uint32 { return s.serialMsgs.Add(1) }

// IncRadio counts one received radio write and returns the new total.
func (s *State) IncRadio() uint32 { return s.radioMsgs.Add(1) }

// IncTest counts one sent test message and returns the new total.
func (s *State) IncTest() uint32 { return s.testMsgs.Add(1) }

func (s *State) SerialCount() uint32 { return s.serialMsgs.Load() }
func (s *State) RadioCount() uint32  { return s.radioMsgs.Load() }
func (s *State) TestCount() uint32   { return s.testMsgs.Load() }

// Uptime is the time since New.
func (s *State) Uptime() time.Duration { return time.Since(s.bootedAt) }

// UptimeSeconds is the whole-second uptime used by banners.
func (s *State) UptimeSeconds() uint64 { return timex.SinceS(s.bootedAt) }

// MarkStatusEmit records that the periodic heartbeat fired now.
func (s *State) MarkStatusEmit() { s.lastStatusMs.Store(timex.NowMs()) }

// LastStatusEmitMs returns the unix-ms timestamp of the last heartbeat, zero
// if it has never fired.
func (s *State) LastStatusEmitMs() int64 { return s.lastStatusMs.Load() }
