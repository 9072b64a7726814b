// Package types holds the small shared value types exchanged between the
// transports, the dispatcher and the platform providers.
package types

// Origin tags an inbound command line with the transport that delivered it.
// Response routing depends on it: serial responses land on the console,
// radio responses are notified back to the connected peer.
type Origin uint8

const (
	OriginSerial Origin = iota
	OriginRadio
)

func (o Origin) String() string {
	if o == OriginRadio {
		return "radio"
	}
	return "serial"
}

// MemInfo is one sample of heap figures for the memory banner.
// FreePSRAM is zero on targets without external RAM.
type MemInfo struct {
	FreeHeap  uint64
	MaxAlloc  uint64 // largest free block
	HeapSize  uint64
	FreePSRAM uint64
}

// MemReader supplies a MemInfo sample on demand.
type MemReader func() MemInfo

// RadioEventKind enumerates the closed set of events the wireless stack can
// deliver. Everything the radio does to device state flows through these.
type RadioEventKind uint8

const (
	RadioConnected RadioEventKind = iota
	RadioDisconnected
	RadioWritten
)

func (k RadioEventKind) String() string {
	switch k {
	case RadioConnected:
		return "connected"
	case RadioDisconnected:
		return "disconnected"
	default:
		return "written"
	}
}

// RadioEvent is one occurrence delivered by the wireless stack.
// Payload is only set for RadioWritten and is owned by the receiver.
type RadioEvent struct {
	Kind    RadioEventKind
	Payload []byte
}
