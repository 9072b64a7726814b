package errcode

import (
	"errors"
	"testing"
)

func TestCodeIsError(t *testing.T) {
	var err error = NotConnected
	if err.Error() != "not_connected" {
		t.Errorf("got %q", err.Error())
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Error("Of(nil) != OK")
	}
	if Of(NotifyFailed) != NotifyFailed {
		t.Error("Of(Code) did not round-trip")
	}
	wrapped := &E{C: PortClosed, Op: "read", Err: errors.New("eof")}
	if Of(wrapped) != PortClosed {
		t.Error("Of(*E) did not extract code")
	}
	if Of(errors.New("plain")) != Error {
		t.Error("Of(plain) != Error")
	}
}

func TestEUnwrap(t *testing.T) {
	cause := errors.New("dbus gone")
	e := &E{C: AdvertiseFail, Op: "adv.start", Msg: "restart", Err: cause}
	if !errors.Is(e, cause) {
		t.Error("errors.Is failed through E")
	}
	if e.Error() != "advertise_failed: restart" {
		t.Errorf("got %q", e.Error())
	}
}
