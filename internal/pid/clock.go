package pid

import "time"

// Clock returns the current time in seconds. All timestamps passed to a
// Controller must share the clock's epoch.
type Clock func() float64

var epoch = time.Now()

// Monotonic reads Go's monotonic clock as seconds since process start.
func Monotonic() float64 {
	return time.Since(epoch).Seconds()
}
