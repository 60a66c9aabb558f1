package specification

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ByLevel struct {
	Level string
}

func (s ByLevel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("level = ?", s.Level)
}

type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}

type ByUserID struct {
	UserID string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// TimestampFrom keeps records whose event time is at or after the bound
// (inclusive lower end of a date range).
type TimestampFrom struct {
	From time.Time
}

func (s TimestampFrom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("timestamp >= ?", s.From)
}

// TimestampUntil keeps records whose event time is at or before the bound
// (inclusive upper end of a date range).
type TimestampUntil struct {
	Until time.Time
}

func (s TimestampUntil) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("timestamp <= ?", s.Until)
}

// MessageContains filters by case-insensitive substring match on message
// only. Using ILIKE for Postgres; the query is matched literally, so LIKE
// metacharacters in it are escaped before the wildcards are added.
type MessageContains struct {
	Query string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(q string) string {
	return likeEscaper.Replace(q)
}

func (s MessageContains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(s.Query) + "%"
	return db.Where("message ILIKE ?", pattern)
}
