package devstate

import (
	"sync"
	"testing"
	"time"
)

func TestZeroAtBoot(t *testing.T) {
	s := New()
	if s.RadioConnected() {
		t.Error("radioConnected true at boot")
	}
	if s.SerialCount() != 0 || s.RadioCount() != 0 || s.TestCount() != 0 {
		t.Error("counters non-zero at boot")
	}
	if s.LastStatusEmitMs() != 0 {
		t.Error("lastStatusEmit set at boot")
	}
}

func TestCountersIncrement(t *testing.T) {
	s := New()
	for i := uint32(1); i <= 3; i++ {
		if got := s.IncSerial(); got != i {
			t.Errorf("IncSerial #%d = %d", i, got)
		}
	}
	if s.IncRadio() != 1 || s.IncTest() != 1 {
		t.Error("radio/test increments wrong")
	}
	if s.SerialCount() != 3 || s.RadioCount() != 1 || s.TestCount() != 1 {
		t.Errorf("counts = %d/%d/%d", s.SerialCount(), s.RadioCount(), s.TestCount())
	}
}

func TestConnectionFlag(t *testing.T) {
	s := New()
	s.SetRadioConnected(true)
	if !s.RadioConnected() {
		t.Error("flag not set")
	}
	s.SetRadioConnected(false)
	if s.RadioConnected() {
		t.Error("flag not cleared")
	}
}

// Counters are mutated from the main loop and from radio callbacks; every
// increment must land exactly once under that interleaving.
func TestConcurrentIncrements(t *testing.T) {
	s := New()
	const goroutines = 8
	const perG = 1000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				s.IncSerial()
				s.IncRadio()
				s.IncTest()
				s.SetRadioConnected(i%2 == 0)
			}
		}()
	}
	wg.Wait()

	want := uint32(goroutines * perG)
	if s.SerialCount() != want || s.RadioCount() != want || s.TestCount() != want {
		t.Errorf("counts = %d/%d/%d, want %d",
			s.SerialCount(), s.RadioCount(), s.TestCount(), want)
	}
}

func TestMarkStatusEmit(t *testing.T) {
	s := New()
	before := time.Now().UnixMilli()
	s.MarkStatusEmit()
	got := s.LastStatusEmitMs()
	if got < before || got > time.Now().UnixMilli() {
		t.Errorf("LastStatusEmitMs = %d out of range", got)
	}
}

func TestUptimeAdvances(t *testing.T) {
	s := New()
	time.Sleep(5 * time.Millisecond)
	if s.Uptime() <= 0 {
		t.Error("uptime not advancing")
	}
}
