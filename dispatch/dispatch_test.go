package dispatch

import (
	"bytes"
	"strings"
	"testing"

	"commtest-go/devstate"
	"commtest-go/errcode"
	"commtest-go/types"
)

// fakeLink records notifications and advertising restarts.
type fakeLink struct {
	connected bool
	notified  [][]byte
	restarts  int
	notifyErr error
}

func (f *fakeLink) Connected() bool { return f.connected }
func (f *fakeLink) Notify(p []byte) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notified = append(f.notified, append([]byte(nil), p...))
	return nil
}
func (f *fakeLink) RestartAdvertising() error {
	f.restarts++
	return nil
}

func newTestDispatcher() (*Dispatcher, *devstate.State, *fakeLink, *bytes.Buffer) {
	st := devstate.New()
	link := &fakeLink{}
	con := &bytes.Buffer{}
	mem := func() types.MemInfo {
		return types.MemInfo{FreeHeap: 100, MaxAlloc: 50, HeapSize: 200, FreePSRAM: 10}
	}
	return New(st, con, link, mem), st, link, con
}

func TestBannersAlwaysRespond(t *testing.T) {
	for _, cmd := range []string{"h", "s", "t", "r", "c", "m"} {
		for _, origin := range []types.Origin{types.OriginSerial, types.OriginRadio} {
			d, _, _, _ := newTestDispatcher()
			if resp := d.Dispatch(cmd, origin); resp == "" {
				t.Errorf("%q via %v: empty response", cmd, origin)
			}
		}
	}
}

func TestBannerCommandsDoNotTouchFlagOrTestCounter(t *testing.T) {
	for _, cmd := range []string{"h", "s", "c", "m"} {
		d, st, _, _ := newTestDispatcher()
		d.Dispatch(cmd, types.OriginRadio)
		if st.TestCount() != 0 {
			t.Errorf("%q mutated test counter", cmd)
		}
		if st.RadioConnected() {
			t.Errorf("%q mutated connection flag", cmd)
		}
	}
}

func TestBannersPrintToConsoleRegardlessOfOrigin(t *testing.T) {
	d, _, _, con := newTestDispatcher()
	d.Dispatch("c", types.OriginRadio)
	if !strings.Contains(con.String(), "=== Message Counters ===") {
		t.Error("counters banner missing from console for radio origin")
	}
}

func TestEmptyLineIsNoOp(t *testing.T) {
	d, st, link, con := newTestDispatcher()
	if resp := d.Dispatch("", types.OriginSerial); resp != "" {
		t.Errorf("empty line response = %q", resp)
	}
	if resp := d.Dispatch("   ", types.OriginRadio); resp != "" {
		t.Errorf("blank line response = %q", resp)
	}
	if con.Len() != 0 || st.TestCount() != 0 || len(link.notified) != 0 {
		t.Error("empty line had side effects")
	}
}

func TestTrimBeforeMatch(t *testing.T) {
	d, st, _, _ := newTestDispatcher()
	if resp := d.Dispatch("  t \r", types.OriginSerial); resp != "Test message sent" {
		t.Errorf("trimmed t response = %q", resp)
	}
	if st.TestCount() != 1 {
		t.Error("trimmed t did not count")
	}
}

func TestTestCommandCountsAcrossOrigins(t *testing.T) {
	d, st, _, _ := newTestDispatcher()
	origins := []types.Origin{
		types.OriginSerial, types.OriginRadio, types.OriginRadio,
		types.OriginSerial, types.OriginRadio,
	}
	for _, o := range origins {
		d.Dispatch("t", o)
	}
	if st.TestCount() != uint32(len(origins)) {
		t.Errorf("TestCount = %d, want %d", st.TestCount(), len(origins))
	}
}

func TestTestCommandRoundTripWhileConnected(t *testing.T) {
	d, _, link, con := newTestDispatcher()
	link.connected = true

	d.Dispatch("t", types.OriginSerial)

	if len(link.notified) != 1 {
		t.Fatalf("notifications = %d, want 1", len(link.notified))
	}
	if !strings.Contains(string(link.notified[0]), "Test message #1") {
		t.Errorf("notification %q lacks counter value", link.notified[0])
	}
	if !strings.Contains(con.String(), "[USB] Sending: Test message #1 from XIAO ESP32S3") {
		t.Errorf("console missing confirmation line: %q", con.String())
	}
}

func TestTestCommandWithoutPeer(t *testing.T) {
	d, _, link, con := newTestDispatcher()

	d.Dispatch("t", types.OriginSerial)

	if len(link.notified) != 0 {
		t.Error("notified without a connected peer")
	}
	if !strings.Contains(con.String(), "[BLE] No connection - message not sent") {
		t.Error("missing no-connection line")
	}
}

func TestTestCommandNotifyFailure(t *testing.T) {
	d, st, link, con := newTestDispatcher()
	link.connected = true
	link.notifyErr = errcode.NotifyFailed

	if resp := d.Dispatch("t", types.OriginRadio); resp != "Test message sent" {
		t.Errorf("response = %q", resp)
	}
	if st.TestCount() != 1 {
		t.Error("failure must not undo the counter")
	}
	if !strings.Contains(con.String(), "[BLE] Send failed: notify_failed") {
		t.Errorf("console = %q", con.String())
	}
}

func TestRestartAdvertising(t *testing.T) {
	d, _, link, con := newTestDispatcher()
	if resp := d.Dispatch("r", types.OriginRadio); resp != "BLE advertising restarted" {
		t.Errorf("response = %q", resp)
	}
	if link.restarts != 1 {
		t.Errorf("restarts = %d", link.restarts)
	}
	if !strings.Contains(con.String(), "[BLE] Advertising restarted") {
		t.Error("missing restart log line")
	}
}

func TestEchoSerialPrintsToConsole(t *testing.T) {
	d, _, _, con := newTestDispatcher()
	resp := d.Dispatch("xyz123", types.OriginSerial)
	if resp != "Echo: xyz123" {
		t.Errorf("response = %q", resp)
	}
	if !strings.Contains(con.String(), "Echo: xyz123") {
		t.Errorf("console = %q", con.String())
	}
}

func TestEchoRadioStaysOffConsole(t *testing.T) {
	d, _, _, con := newTestDispatcher()
	resp := d.Dispatch("hello", types.OriginRadio)
	if resp != "Echo: hello" {
		t.Errorf("response = %q", resp)
	}
	if strings.Contains(con.String(), "Echo:") {
		t.Errorf("radio echo leaked to console: %q", con.String())
	}
}

func TestStatusBannerContents(t *testing.T) {
	d, st, _, con := newTestDispatcher()
	st.SetRadioConnected(true)
	d.Dispatch("s", types.OriginSerial)

	out := con.String()
	for _, want := range []string{"BLE: Connected", "Uptime: ", "Free heap: 100 bytes"} {
		if !strings.Contains(out, want) {
			t.Errorf("status banner missing %q in %q", want, out)
		}
	}
}

func TestMemoryBannerContents(t *testing.T) {
	d, _, _, con := newTestDispatcher()
	d.Dispatch("m", types.OriginSerial)

	out := con.String()
	for _, want := range []string{
		"Free heap: 100 bytes",
		"Largest free block: 50 bytes",
		"Total heap size: 200 bytes",
		"Free PSRAM: 10 bytes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("memory banner missing %q", want)
		}
	}
}

func TestCountersBannerContents(t *testing.T) {
	d, st, _, con := newTestDispatcher()
	st.IncSerial()
	st.IncSerial()
	st.IncRadio()
	d.Dispatch("c", types.OriginSerial)

	out := con.String()
	for _, want := range []string{
		"USB messages received: 2",
		"BLE messages: 1",
		"Test messages sent: 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("counters banner missing %q in %q", want, out)
		}
	}
}
