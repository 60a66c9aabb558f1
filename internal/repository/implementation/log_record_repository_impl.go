package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loghive-be/internal/entity"
	"loghive-be/internal/mapper"
	"loghive-be/internal/model"
	"loghive-be/internal/pkg/apperror"
	"loghive-be/internal/pkg/logger"
	"loghive-be/internal/repository/contract"
	"loghive-be/internal/repository/specification"

	"gorm.io/gorm"
)

// periodExpr maps each granularity to its fixed truncation of the event
// timestamp. hour/day/month floor the timestamp; week uses the ISO year +
// ISO week number so early-January days group with the week they belong to.
var periodExpr = map[entity.Granularity]string{
	entity.GranularityHour:  "to_char(timestamp, 'YYYY-MM-DD HH24:00')",
	entity.GranularityDay:   "to_char(timestamp, 'YYYY-MM-DD')",
	entity.GranularityWeek:  "to_char(timestamp, 'IYYY-IW')",
	entity.GranularityMonth: "to_char(timestamp, 'YYYY-MM')",
}

type LogRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LogRecordMapper
	logger logger.ILogger
}

func NewLogRecordRepository(db *gorm.DB, log logger.ILogger) contract.LogRecordRepository {
	return &LogRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewLogRecordMapper(),
		logger: log,
	}
}

func (r *LogRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LogRecordRepositoryImpl) Create(ctx context.Context, record *entity.LogRecord) error {
	m, err := r.mapper.ToModel(record)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Storage(err)
	}
	stored, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*record = *stored
	return nil
}

func (r *LogRecordRepositoryImpl) UpdateFields(ctx context.Context, record *entity.LogRecord) error {
	m, err := r.mapper.ToModel(record)
	if err != nil {
		return err
	}

	// Only the mutable columns; id, user_id, timestamp and created_at stay
	// immutable after creation. updated_at is bumped by gorm.
	res := r.db.WithContext(ctx).
		Model(&model.LogRecord{}).
		Where("id = ?", record.Id).
		Select("level", "message", "source", "metadata", "tags").
		Updates(m)
	if res.Error != nil {
		return apperror.Storage(res.Error)
	}
	// The row can vanish between the caller's read and this write.
	if res.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("log record %d not found", record.Id))
	}

	var refreshed model.LogRecord
	if err := r.db.WithContext(ctx).First(&refreshed, record.Id).Error; err != nil {
		return apperror.Storage(err)
	}
	stored, err := r.mapper.ToEntity(&refreshed)
	if err != nil {
		return err
	}
	*record = *stored
	return nil
}

func (r *LogRecordRepositoryImpl) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.LogRecord{}, id)
	if res.Error != nil {
		return false, apperror.Storage(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *LogRecordRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&model.LogRecord{})
	if res.Error != nil {
		return 0, apperror.Storage(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *LogRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LogRecord, error) {
	var m model.LogRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Storage(err)
	}
	return r.mapper.ToEntity(&m)
}

func (r *LogRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LogRecord, error) {
	var models []*model.LogRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.Storage(err)
	}

	entities := make([]*entity.LogRecord, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			// A malformed row fails alone; it must not abort the whole page.
			r.logger.Error("log_record_repository", "dropping undecodable log record from result set", map[string]interface{}{
				"record_id": m.Id,
				"error":     err.Error(),
			})
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *LogRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LogRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.Storage(err)
	}
	return count, nil
}

func (r *LogRecordRepositoryImpl) CountByPeriodAndLevel(ctx context.Context, granularity entity.Granularity, specs ...specification.Specification) ([]*entity.PeriodCount, error) {
	expr, ok := periodExpr[granularity]
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unsupported granularity: %s", granularity))
	}

	var rows []*entity.PeriodCount
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LogRecord{}), specs...)
	err := query.
		Select(expr + " AS period, level, COUNT(*) AS count").
		Group("period, level").
		Order("period DESC, level ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return rows, nil
}

func (r *LogRecordRepositoryImpl) CountByLevel(ctx context.Context, specs ...specification.Specification) ([]*entity.LevelCount, error) {
	var rows []*entity.LevelCount
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LogRecord{}), specs...)
	err := query.
		Select("level, COUNT(*) AS total").
		Group("level").
		Order("level ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return rows, nil
}
