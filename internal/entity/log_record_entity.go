package entity

import "time"

// Level values form a closed set; anything else is rejected at the boundary.
const (
	LevelError = "error"
	LevelWarn  = "warn"
	LevelInfo  = "info"
	LevelDebug = "debug"
)

type LogRecord struct {
	Id        uint64
	Level     string
	Message   string
	Source    string
	UserId    *string // Loose reference, never validated against the user store
	Metadata  map[string]interface{}
	Tags      []string
	Timestamp time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Granularity is the time-truncation unit used for bucketed stats.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(s) {
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(s), true
	}
	return "", false
}

// PeriodCount is one (truncated period, level) bucket.
type PeriodCount struct {
	Period string
	Level  string
	Count  int64
}

// LevelCount is the level-only total over the same predicate.
type LevelCount struct {
	Level string
	Total int64
}
