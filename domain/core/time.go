package core

import (
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// MarshalText renders the timestamp as RFC 3339 for JSON and YAML reports.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(time.Time(t).Format(time.RFC3339Nano)), nil
}

// UnmarshalText parses an RFC 3339 timestamp
func (t *Timestamp) UnmarshalText(data []byte) error {
	parsed, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Since returns the milliseconds elapsed since start
func Since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
