package util

import "time"

// NowUTC exposes time.Now in UTC; services hold it as a replaceable clock.
func NowUTC() time.Time {
	return time.Now().UTC()
}
