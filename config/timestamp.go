package config

import "time"

type TimestampGenerator interface {
	GetTime() time.Time
}

type RealTimestampGenerator struct{}

func (t RealTimestampGenerator) GetTime() time.Time {
	return time.Now()
}

// FixedTimestampGenerator lets tests pin config.Clock to a deterministic
// value so job-record timestamps are reproducible.
type FixedTimestampGenerator struct {
	Timestamp time.Time
}

func (t FixedTimestampGenerator) GetTime() time.Time {
	return t.Timestamp
}
