package util

import "time"

// NowUTC is the default clock for stored timestamps; tests swap it out.
func NowUTC() time.Time {
	return time.Now().UTC()
}
