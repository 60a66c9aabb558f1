package contract

import (
	"context"
	"time"

	"loghive-be/internal/entity"
	"loghive-be/internal/repository/specification"
)

type LogRecordRepository interface {
	Create(ctx context.Context, record *entity.LogRecord) error
	// UpdateFields persists only the allow-listed mutable columns (level,
	// message, source, metadata, tags) and refreshes the entity in place.
	UpdateFields(ctx context.Context, record *entity.LogRecord) error
	// Delete reports whether a row matched the id; a miss is not an error.
	Delete(ctx context.Context, id uint64) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LogRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LogRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CountByPeriodAndLevel buckets matching records by the granularity's
	// truncation of timestamp and by level, ordered period DESC, level ASC.
	CountByPeriodAndLevel(ctx context.Context, granularity entity.Granularity, specs ...specification.Specification) ([]*entity.PeriodCount, error)
	// CountByLevel totals matching records per level over the same predicate.
	CountByLevel(ctx context.Context, specs ...specification.Specification) ([]*entity.LevelCount, error)
}
