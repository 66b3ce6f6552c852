package common

import (
	"time"
)

// TimestampToTime converts a network timestamp (unix seconds) to time.Time.
func TimestampToTime(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC()
}
