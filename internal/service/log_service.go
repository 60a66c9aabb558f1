package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"loghive-be/internal/dto"
	"loghive-be/internal/entity"
	"loghive-be/internal/pkg/apperror"
	"loghive-be/internal/pkg/logger"
	"loghive-be/internal/repository/contract"
	"loghive-be/internal/repository/specification"
)

// maxPageSize bounds memory and database load for listing/search pages.
const maxPageSize = 100

// sortableFields is the allow-list of columns a caller may order by.
var sortableFields = map[string]string{
	"id":         "id",
	"level":      "level",
	"message":    "message",
	"source":     "source",
	"timestamp":  "timestamp",
	"created_at": "created_at",
}

type ILogService interface {
	Ingest(ctx context.Context, req *dto.IngestLogRequest) (*dto.LogResponse, error)
	Show(ctx context.Context, id uint64) (*dto.LogResponse, error)
	List(ctx context.Context, req *dto.ListLogsRequest) (*dto.ListLogsResponse, error)
	Search(ctx context.Context, req *dto.SearchLogsRequest) (*dto.SearchLogsResponse, error)
	Stats(ctx context.Context, req *dto.LogStatsRequest) (*dto.LogStatsResponse, error)
	Update(ctx context.Context, req *dto.UpdateLogRequest) (*dto.LogResponse, error)
	Delete(ctx context.Context, id uint64) error
}

type logService struct {
	logRepo          contract.LogRecordRepository
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewLogService(
	logRepo contract.LogRecordRepository,
	publisherService IPublisherService,
	log logger.ILogger,
) ILogService {
	return &logService{
		logRepo:          logRepo,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *logService) Ingest(ctx context.Context, req *dto.IngestLogRequest) (*dto.LogResponse, error) {
	record := entity.LogRecord{
		Level:    req.Level,
		Message:  req.Message,
		Source:   req.Source,
		UserId:   req.UserId,
		Metadata: req.Metadata,
		Tags:     req.Tags,
	}
	if req.Timestamp != nil {
		record.Timestamp = *req.Timestamp
	} else {
		record.Timestamp = time.Now()
	}

	if err := s.logRepo.Create(ctx, &record); err != nil {
		return nil, err
	}

	// Alerting is auxiliary; a publish failure never fails the ingest.
	if record.Level == entity.LevelError && s.publisherService != nil {
		alert := dto.LogAlertMessage{
			RecordId:  record.Id,
			Level:     record.Level,
			Source:    record.Source,
			Message:   record.Message,
			Timestamp: record.Timestamp,
		}
		payload, err := json.Marshal(alert)
		if err == nil {
			err = s.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Warn("log_service", "failed to publish log alert", map[string]interface{}{
				"record_id": record.Id,
				"error":     err.Error(),
			})
		}
	}

	return toLogResponse(&record), nil
}

func (s *logService) Show(ctx context.Context, id uint64) (*dto.LogResponse, error) {
	record, err := s.logRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NotFound(fmt.Sprintf("log record %d not found", id))
	}
	return toLogResponse(record), nil
}

func (s *logService) List(ctx context.Context, req *dto.ListLogsRequest) (*dto.ListLogsResponse, error) {
	specs := compileFilter(req.Filter)

	items, meta, err := s.paginate(ctx, specs, req.Page, req.Limit, req.SortBy, req.SortOrder)
	if err != nil {
		return nil, err
	}
	return &dto.ListLogsResponse{Items: items, Pagination: meta}, nil
}

func (s *logService) Search(ctx context.Context, req *dto.SearchLogsRequest) (*dto.SearchLogsResponse, error) {
	if req.Query == "" {
		return nil, apperror.Validation("search query is required")
	}

	filter := req.Filter
	filter.UserId = "" // Search filters exclude the user dimension
	filter.Query = req.Query
	specs := compileFilter(filter)

	items, meta, err := s.paginate(ctx, specs, req.Page, req.Limit, req.SortBy, req.SortOrder)
	if err != nil {
		return nil, err
	}
	return &dto.SearchLogsResponse{Query: req.Query, Items: items, Pagination: meta}, nil
}

func (s *logService) Stats(ctx context.Context, req *dto.LogStatsRequest) (*dto.LogStatsResponse, error) {
	granularity, ok := entity.ParseGranularity(req.Granularity)
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("granularity must be one of hour, day, week, month; got %q", req.Granularity))
	}

	specs := compileFilter(dto.LogFilter{
		Source:    req.Source,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})

	// Two independent queries over the same predicate. A write landing
	// between them can make the numbers disagree; this is an accepted
	// eventually-consistent read, not a snapshot.
	periodCounts, err := s.logRepo.CountByPeriodAndLevel(ctx, granularity, specs...)
	if err != nil {
		return nil, err
	}
	levelCounts, err := s.logRepo.CountByLevel(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.LogStatsResponse{
		PeriodStats:   make([]dto.PeriodStat, 0, len(periodCounts)),
		TotalsByLevel: make([]dto.LevelTotal, 0, len(levelCounts)),
	}
	for _, pc := range periodCounts {
		res.PeriodStats = append(res.PeriodStats, dto.PeriodStat{Period: pc.Period, Level: pc.Level, Count: pc.Count})
	}
	for _, lc := range levelCounts {
		res.TotalsByLevel = append(res.TotalsByLevel, dto.LevelTotal{Level: lc.Level, Total: lc.Total})
	}
	return res, nil
}

func (s *logService) Update(ctx context.Context, req *dto.UpdateLogRequest) (*dto.LogResponse, error) {
	// Reject an empty allow-listed update set before touching storage.
	if req.Level == nil && req.Message == nil && req.Source == nil && req.Metadata == nil && req.Tags == nil {
		return nil, apperror.NoOpUpdate("update contains no mutable fields")
	}

	record, err := s.logRepo.FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NotFound(fmt.Sprintf("log record %d not found", req.Id))
	}

	if req.Level != nil {
		record.Level = *req.Level
	}
	if req.Message != nil {
		record.Message = *req.Message
	}
	if req.Source != nil {
		record.Source = *req.Source
	}
	if req.Metadata != nil {
		record.Metadata = *req.Metadata
	}
	if req.Tags != nil {
		record.Tags = *req.Tags
	}

	if err := s.logRepo.UpdateFields(ctx, record); err != nil {
		return nil, err
	}
	return toLogResponse(record), nil
}

func (s *logService) Delete(ctx context.Context, id uint64) error {
	matched, err := s.logRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !matched {
		return apperror.NotFound(fmt.Sprintf("log record %d not found", id))
	}
	return nil
}

// compileFilter translates the criteria set into conjunctive specifications.
// An empty set compiles to no clauses, matching all rows.
func compileFilter(f dto.LogFilter) []specification.Specification {
	specs := make([]specification.Specification, 0, 6)
	if f.Level != "" {
		specs = append(specs, specification.ByLevel{Level: f.Level})
	}
	if f.Source != "" {
		specs = append(specs, specification.BySource{Source: f.Source})
	}
	if f.UserId != "" {
		specs = append(specs, specification.ByUserID{UserID: f.UserId})
	}
	if f.StartDate != nil {
		specs = append(specs, specification.TimestampFrom{From: *f.StartDate})
	}
	if f.EndDate != nil {
		specs = append(specs, specification.TimestampUntil{Until: *f.EndDate})
	}
	if f.Query != "" {
		specs = append(specs, specification.MessageContains{Query: f.Query})
	}
	return specs
}

// paginate runs the count and the page query against the identical
// predicate. The two round trips are not a snapshot: a write racing between
// them can skew total vs items, which is accepted per the concurrency model.
func (s *logService) paginate(
	ctx context.Context,
	specs []specification.Specification,
	page, limit int,
	sortBy, sortOrder string,
) ([]*dto.LogResponse, dto.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	column, order, err := resolveSort(sortBy, sortOrder)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	total, err := s.logRepo.Count(ctx, specs...)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	pageSpecs := append(append([]specification.Specification{}, specs...),
		specification.OrderBy{Field: column, Desc: order == "desc"},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	records, err := s.logRepo.FindAll(ctx, pageSpecs...)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	items := make([]*dto.LogResponse, 0, len(records))
	for _, r := range records {
		items = append(items, toLogResponse(r))
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}

	return items, dto.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func resolveSort(sortBy, sortOrder string) (column, order string, err error) {
	if sortBy == "" {
		sortBy = "timestamp"
	}
	column, ok := sortableFields[sortBy]
	if !ok {
		return "", "", apperror.Validation(fmt.Sprintf("unsupported sort field: %s", sortBy))
	}

	switch sortOrder {
	case "", "desc":
		order = "desc"
	case "asc":
		order = "asc"
	default:
		return "", "", apperror.Validation(fmt.Sprintf("sort order must be asc or desc; got %q", sortOrder))
	}
	return column, order, nil
}

func toLogResponse(r *entity.LogRecord) *dto.LogResponse {
	return &dto.LogResponse{
		Id:        r.Id,
		Level:     r.Level,
		Message:   r.Message,
		Source:    r.Source,
		UserId:    r.UserId,
		Metadata:  r.Metadata,
		Tags:      r.Tags,
		Timestamp: r.Timestamp,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
