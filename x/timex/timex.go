package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// SinceS returns whole elapsed seconds since t, never negative.
func SinceS(t time.Time) uint64 {
	d := time.Since(t)
	if d < 0 {
		return 0
	}
	return uint64(d / time.Second)
}
