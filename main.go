package main

import (
	"context"
	"io"
	"time"

	"tinygo.org/x/bluetooth"

	"commtest-go/bus"
	"commtest-go/devstate"
	"commtest-go/dispatch"
	"commtest-go/platform"
	"commtest-go/services/config"
	"commtest-go/services/heartbeat"
	"commtest-go/services/radio"
	serialio "commtest-go/services/serial"
)

const (
	deviceVariant = "xiao-esp32s3"
	deviceName    = "XIAO-ESP32S3-Test"
	serviceUUID   = "12345678-1234-1234-1234-123456789abc"
	charUUID      = "87654321-4321-4321-4321-cba987654321"
	initialValue  = "Hello from XIAO ESP32S3!"

	baudRate     = 115200
	pollInterval = 100 * time.Millisecond
	maxLine      = 128
)

func main() {
	// Allow the console to enumerate before we print.
	time.Sleep(2 * time.Second)
	con := platform.Console()

	say(con, "\n*** XIAO ESP32S3 Communication Test Starting ***")
	say(con, "Board: Seeed XIAO ESP32S3")
	say(con, "Baud Rate: 115200")

	ctx := context.Background()
	b := bus.NewBus(16)

	// Configuration first so retained settings greet the services.
	cfgCtx := context.WithValue(ctx, config.CtxDeviceKey, deviceVariant)
	config.NewConfigService().Start(cfgCtx, b.NewConnection("config"))

	state := devstate.New()

	say(con, "[Setup] Initializing BLE...")
	name := radioName(b, deviceName)
	link := radio.NewGATTLink(bluetooth.DefaultAdapter, radio.LinkConfig{
		Name:         name,
		ServiceUUID:  serviceUUID,
		CharUUID:     charUUID,
		InitialValue: initialValue,
	})
	radioConn := b.NewConnection("radio")
	if err := link.Start(radioConn); err != nil {
		// Keep running; the link stays safe to call and reports not ready.
		say(con, "[Setup] BLE unavailable: "+err.Error())
	} else {
		say(con, "[BLE] Server started, advertising as '"+name+"'")
		say(con, "[BLE] Service UUID: "+serviceUUID)
		say(con, "[BLE] Device should now be discoverable!")
	}

	disp := dispatch.New(state, con, link, platform.ReadMemInfo)
	radio.NewAdapter(state, disp, link, con).Start(ctx, radioConn)

	port, err := platform.OpenPort(platform.DefaultPortName(), baudRate)
	if err != nil {
		say(con, "[Setup] Serial port unavailable: "+err.Error())
		return
	}
	reader := serialio.NewReader(16)
	if _, err := reader.Register(ctx, serialio.ReaderCfg{Port: port, MaxLine: maxLine}); err != nil {
		say(con, "[Setup] Serial reader failed: "+err.Error())
		return
	}
	serialio.NewService(state, disp, pollInterval).
		Start(ctx, b.NewConnection("serial"), reader.Lines())

	heartbeat.NewService(state, con, heartbeat.DefaultInterval).
		Start(ctx, b.NewConnection("heartbeat"))

	disp.PrintStatus()
	disp.PrintMenu()
	say(con, "[Setup] All communication channels initialized!")
	say(con, "[Setup] Ready for testing...")

	// The services own the work from here.
	select {}
}

// radioName takes the advertised name from the retained radio config when the
// config service has published one, else the built-in default.
func radioName(b *bus.Bus, fallback string) string {
	conn := b.NewConnection("radio-name")
	defer conn.Disconnect()
	sub := conn.Subscribe(bus.T("config", "radio"))
	select {
	case msg := <-sub.Channel():
		if m, ok := msg.Payload.(map[string]any); ok {
			if v, ok := m["name"].(string); ok && v != "" {
				return v
			}
		}
	case <-time.After(250 * time.Millisecond):
	}
	return fallback
}

func say(con io.Writer, s string) {
	_, _ = io.WriteString(con, s)
	_, _ = io.WriteString(con, "\n")
}
