package radio

import (
	"sync/atomic"
	"time"

	"tinygo.org/x/bluetooth"

	"commtest-go/bus"
	"commtest-go/errcode"
	"commtest-go/types"
)

// LinkConfig identifies the advertised device and its GATT layout.
type LinkConfig struct {
	Name         string // advertised local name
	ServiceUUID  string
	CharUUID     string
	InitialValue string // characteristic value before the first command
}

// GATTLink binds the command interface to one GATT service with a single
// Read|Write|Notify characteristic. It is constructed explicitly and passed
// to whoever needs it; there are no package-level handles.
//
// A link that failed to start stays safe to use: Connected reports false and
// Notify/RestartAdvertising return link_not_ready.
type GATTLink struct {
	adapter *bluetooth.Adapter
	cfg     LinkConfig

	adv  *bluetooth.Advertisement
	char bluetooth.Characteristic

	ready     atomic.Bool
	connected atomic.Bool
}

func NewGATTLink(adapter *bluetooth.Adapter, cfg LinkConfig) *GATTLink {
	return &GATTLink{adapter: adapter, cfg: cfg}
}

// Start brings up the stack, registers the service and begins advertising.
// Stack callbacks are forwarded to conn as radio events.
func (l *GATTLink) Start(conn *bus.Connection) error {
	svcUUID, err := bluetooth.ParseUUID(l.cfg.ServiceUUID)
	if err != nil {
		return &errcode.E{C: errcode.InvalidConfig, Op: "parse service uuid", Err: err}
	}
	charUUID, err := bluetooth.ParseUUID(l.cfg.CharUUID)
	if err != nil {
		return &errcode.E{C: errcode.InvalidConfig, Op: "parse char uuid", Err: err}
	}

	l.adapter.SetConnectHandler(func(dev bluetooth.Device, connected bool) {
		l.connected.Store(connected)
		kind := types.RadioDisconnected
		if connected {
			kind = types.RadioConnected
		}
		PublishEvent(conn, types.RadioEvent{Kind: kind})
	})

	if err := l.adapter.Enable(); err != nil {
		return &errcode.E{C: errcode.LinkNotReady, Op: "adapter enable", Err: err}
	}

	err = l.adapter.AddService(&bluetooth.Service{
		UUID: svcUUID,
		Characteristics: []bluetooth.CharacteristicConfig{{
			Handle: &l.char,
			UUID:   charUUID,
			Value:  []byte(l.cfg.InitialValue),
			Flags: bluetooth.CharacteristicReadPermission |
				bluetooth.CharacteristicWritePermission |
				bluetooth.CharacteristicNotifyPermission,
			WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
				payload := append([]byte(nil), value...)
				PublishEvent(conn, types.RadioEvent{
					Kind:    types.RadioWritten,
					Payload: payload,
				})
			},
		}},
	})
	if err != nil {
		return &errcode.E{C: errcode.LinkNotReady, Op: "add service", Err: err}
	}

	l.adv = l.adapter.DefaultAdvertisement()
	err = l.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    l.cfg.Name,
		ServiceUUIDs: []bluetooth.UUID{svcUUID},
		// Relaxed interval for interoperability with constrained mobile
		// stacks.
		Interval: bluetooth.NewDuration(100 * time.Millisecond),
	})
	if err != nil {
		return &errcode.E{C: errcode.AdvertiseFail, Op: "adv configure", Err: err}
	}
	if err := l.adv.Start(); err != nil {
		return &errcode.E{C: errcode.AdvertiseFail, Op: "adv start", Err: err}
	}

	l.ready.Store(true)
	return nil
}

func (l *GATTLink) Connected() bool {
	return l.ready.Load() && l.connected.Load()
}

// Notify writes p into the characteristic value and pushes a notification to
// the subscribed peer.
func (l *GATTLink) Notify(p []byte) error {
	if !l.ready.Load() {
		return errcode.LinkNotReady
	}
	if !l.connected.Load() {
		return errcode.NotConnected
	}
	if _, err := l.char.Write(p); err != nil {
		return &errcode.E{C: errcode.NotifyFailed, Op: "char write", Err: err}
	}
	return nil
}

// RestartAdvertising makes the device discoverable again. Safe to call while
// already advertising.
func (l *GATTLink) RestartAdvertising() error {
	if !l.ready.Load() {
		return errcode.LinkNotReady
	}
	if err := l.adv.Start(); err != nil {
		return &errcode.E{C: errcode.AdvertiseFail, Op: "adv start", Err: err}
	}
	return nil
}
