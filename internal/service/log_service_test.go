package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"loghive-be/internal/dto"
	"loghive-be/internal/entity"
	"loghive-be/internal/pkg/apperror"
	"loghive-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLogRepo is an in-memory stand-in for the Postgres repository. Filtered
// reads return canned results and capture the received specifications so
// tests can assert on the compiled predicate.
type stubLogRepo struct {
	records map[uint64]*entity.LogRecord
	nextId  uint64

	countResult  int64
	pageResult   []*entity.LogRecord
	periodResult []*entity.PeriodCount
	levelResult  []*entity.LevelCount

	countSpecs []specification.Specification
	findSpecs  []specification.Specification
}

func newStubLogRepo() *stubLogRepo {
	return &stubLogRepo{records: make(map[uint64]*entity.LogRecord)}
}

func (s *stubLogRepo) Create(_ context.Context, record *entity.LogRecord) error {
	s.nextId++
	record.Id = s.nextId
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	stored := *record
	s.records[record.Id] = &stored
	return nil
}

func (s *stubLogRepo) UpdateFields(_ context.Context, record *entity.LogRecord) error {
	stored, ok := s.records[record.Id]
	if !ok {
		return apperror.Storage(assert.AnError)
	}
	stored.Level = record.Level
	stored.Message = record.Message
	stored.Source = record.Source
	stored.Metadata = record.Metadata
	stored.Tags = record.Tags
	stored.UpdatedAt = time.Now()
	*record = *stored
	return nil
}

func (s *stubLogRepo) Delete(_ context.Context, id uint64) (bool, error) {
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

func (s *stubLogRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	for id, r := range s.records {
		if r.Timestamp.Before(cutoff) {
			delete(s.records, id)
			purged++
		}
	}
	return purged, nil
}

func (s *stubLogRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.LogRecord, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			if stored, found := s.records[byId.ID]; found {
				cp := *stored
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (s *stubLogRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.LogRecord, error) {
	s.findSpecs = specs
	return s.pageResult, nil
}

func (s *stubLogRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	s.countSpecs = specs
	return s.countResult, nil
}

func (s *stubLogRepo) CountByPeriodAndLevel(_ context.Context, _ entity.Granularity, specs ...specification.Specification) ([]*entity.PeriodCount, error) {
	s.countSpecs = specs
	return s.periodResult, nil
}

func (s *stubLogRepo) CountByLevel(_ context.Context, specs ...specification.Specification) ([]*entity.LevelCount, error) {
	return s.levelResult, nil
}

type stubPublisher struct {
	payloads [][]byte
}

func (p *stubPublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func newTestService(repo *stubLogRepo, pub *stubPublisher) ILogService {
	return NewLogService(repo, pub, noopLogger{})
}

func TestIngestAssignsIdentityAndDefaults(t *testing.T) {
	repo := newStubLogRepo()
	pub := &stubPublisher{}
	svc := newTestService(repo, pub)

	res, err := svc.Ingest(context.Background(), &dto.IngestLogRequest{
		Level:   entity.LevelError,
		Message: "disk full",
		Source:  "scheduler",
	})
	require.NoError(t, err)

	assert.NotZero(t, res.Id)
	assert.WithinDuration(t, time.Now(), res.Timestamp, 2*time.Second)
	assert.Equal(t, res.CreatedAt, res.UpdatedAt)
}

func TestIngestKeepsCallerTimestamp(t *testing.T) {
	repo := newStubLogRepo()
	svc := newTestService(repo, &stubPublisher{})

	eventTime := time.Date(2020, 3, 14, 15, 9, 0, 0, time.UTC)
	res, err := svc.Ingest(context.Background(), &dto.IngestLogRequest{
		Level:     entity.LevelInfo,
		Message:   "backfilled entry",
		Source:    "importer",
		Timestamp: &eventTime,
	})
	require.NoError(t, err)
	assert.True(t, res.Timestamp.Equal(eventTime))
}

func TestIngestErrorLevelPublishesAlert(t *testing.T) {
	repo := newStubLogRepo()
	pub := &stubPublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.Ingest(context.Background(), &dto.IngestLogRequest{
		Level:   entity.LevelError,
		Message: "disk full",
		Source:  "scheduler",
	})
	require.NoError(t, err)
	require.Len(t, pub.payloads, 1)

	var alert dto.LogAlertMessage
	require.NoError(t, json.Unmarshal(pub.payloads[0], &alert))
	assert.Equal(t, "scheduler", alert.Source)
	assert.Equal(t, entity.LevelError, alert.Level)
}

func TestIngestNonErrorLevelDoesNotPublish(t *testing.T) {
	repo := newStubLogRepo()
	pub := &stubPublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.Ingest(context.Background(), &dto.IngestLogRequest{
		Level:   entity.LevelInfo,
		Message: "started",
		Source:  "api",
	})
	require.NoError(t, err)
	assert.Empty(t, pub.payloads)
}

func TestListPaginationMath(t *testing.T) {
	repo := newStubLogRepo()
	repo.countResult = 5
	repo.pageResult = []*entity.LogRecord{
		{Id: 1, Level: entity.LevelError, Message: "a", Source: "s"},
		{Id: 2, Level: entity.LevelError, Message: "b", Source: "s"},
	}
	svc := newTestService(repo, &stubPublisher{})

	res, err := svc.List(context.Background(), &dto.ListLogsRequest{
		Filter: dto.LogFilter{Level: entity.LevelError},
		Page:   1,
		Limit:  2,
	})
	require.NoError(t, err)

	assert.Len(t, res.Items, 2)
	assert.Equal(t, int64(5), res.Pagination.Total)
	assert.Equal(t, 3, res.Pagination.TotalPages)
}

func TestListEmptyResultIsNotAnError(t *testing.T) {
	repo := newStubLogRepo()
	repo.countResult = 0
	repo.pageResult = nil
	svc := newTestService(repo, &stubPublisher{})

	res, err := svc.List(context.Background(), &dto.ListLogsRequest{Page: 7, Limit: 10})
	require.NoError(t, err)

	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, int64(0), res.Pagination.Total)
	assert.Equal(t, 0, res.Pagination.TotalPages)
}

func TestListClampsPageAndLimit(t *testing.T) {
	repo := newStubLogRepo()
	repo.countResult = 1
	svc := newTestService(repo, &stubPublisher{})

	res, err := svc.List(context.Background(), &dto.ListLogsRequest{Page: -3, Limit: 9999})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Pagination.Page)
	assert.Equal(t, maxPageSize, res.Pagination.Limit)

	var pagination *specification.Pagination
	for _, spec := range repo.findSpecs {
		if p, ok := spec.(specification.Pagination); ok {
			pagination = &p
		}
	}
	require.NotNil(t, pagination)
	assert.Equal(t, maxPageSize, pagination.Limit)
	assert.Equal(t, 0, pagination.Offset)
}

func TestListCountAndPageShareThePredicate(t *testing.T) {
	repo := newStubLogRepo()
	repo.countResult = 0
	svc := newTestService(repo, &stubPublisher{})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.List(context.Background(), &dto.ListLogsRequest{
		Filter: dto.LogFilter{Level: entity.LevelWarn, Source: "api", StartDate: &start},
		Page:   1,
		Limit:  10,
	})
	require.NoError(t, err)

	// Count sees exactly the filter clauses; the page query adds only
	// ordering and bounds on top of the same clauses.
	assert.Len(t, repo.countSpecs, 3)
	assert.Equal(t, repo.countSpecs, repo.findSpecs[:len(repo.countSpecs)])
}

func TestListRejectsUnknownSortField(t *testing.T) {
	svc := newTestService(newStubLogRepo(), &stubPublisher{})

	_, err := svc.List(context.Background(), &dto.ListLogsRequest{SortBy: "metadata; DROP TABLE"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestListRejectsUnknownSortOrder(t *testing.T) {
	svc := newTestService(newStubLogRepo(), &stubPublisher{})

	_, err := svc.List(context.Background(), &dto.ListLogsRequest{SortOrder: "sideways"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := newTestService(newStubLogRepo(), &stubPublisher{})

	_, err := svc.Search(context.Background(), &dto.SearchLogsRequest{Query: ""})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSearchEchoesQueryAndDropsUserFilter(t *testing.T) {
	repo := newStubLogRepo()
	repo.countResult = 1
	repo.pageResult = []*entity.LogRecord{{Id: 1, Level: entity.LevelError, Message: "disk full", Source: "scheduler"}}
	svc := newTestService(repo, &stubPublisher{})

	res, err := svc.Search(context.Background(), &dto.SearchLogsRequest{
		Query:  "disk",
		Filter: dto.LogFilter{UserId: "user-1"},
		Page:   1,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, "disk", res.Query)

	var sawMessageContains, sawUserFilter bool
	for _, spec := range repo.findSpecs {
		switch spec.(type) {
		case specification.MessageContains:
			sawMessageContains = true
		case specification.ByUserID:
			sawUserFilter = true
		}
	}
	assert.True(t, sawMessageContains)
	assert.False(t, sawUserFilter)
}

func TestStatsRejectsUnknownGranularity(t *testing.T) {
	svc := newTestService(newStubLogRepo(), &stubPublisher{})

	_, err := svc.Stats(context.Background(), &dto.LogStatsRequest{Granularity: "fortnight"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestStatsShape(t *testing.T) {
	repo := newStubLogRepo()
	repo.periodResult = []*entity.PeriodCount{
		{Period: "2024-06-01", Level: entity.LevelError, Count: 1},
		{Period: "2024-06-01", Level: entity.LevelInfo, Count: 1},
	}
	repo.levelResult = []*entity.LevelCount{
		{Level: entity.LevelError, Total: 1},
		{Level: entity.LevelInfo, Total: 1},
	}
	svc := newTestService(repo, &stubPublisher{})

	res, err := svc.Stats(context.Background(), &dto.LogStatsRequest{Granularity: "day"})
	require.NoError(t, err)

	require.Len(t, res.PeriodStats, 2)
	assert.Equal(t, "2024-06-01", res.PeriodStats[0].Period)
	require.Len(t, res.TotalsByLevel, 2)
	assert.Equal(t, int64(1), res.TotalsByLevel[0].Total)
}

func TestUpdateEmptySetIsNoOp(t *testing.T) {
	repo := newStubLogRepo()
	svc := newTestService(repo, &stubPublisher{})

	created, err := svc.Ingest(context.Background(), &dto.IngestLogRequest{
		Level:   entity.LevelInfo,
		Message: "before",
		Source:  "api",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), &dto.UpdateLogRequest{Id: created.Id})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNoOpUpdate))

	// The stored record is untouched.
	unchanged, err := svc.Show(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, "before", unchanged.Message)
	assert.Equal(t, created.UpdatedAt, unchanged.UpdatedAt)
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(newStubLogRepo(), &stubPublisher{})

	msg := "new message"
	_, err := svc.Update(context.Background(), &dto.UpdateLogRequest{Id: 404, Message: &msg})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	repo := newStubLogRepo()
	svc := newTestService(repo, &stubPublisher{})

	userId := "user-3"
	created, err := svc.Ingest(context.Background(), &dto.IngestLogRequest{
		Level:   entity.LevelWarn,
		Message: "before",
		Source:  "api",
		UserId:  &userId,
		Tags:    []string{"keep"},
	})
	require.NoError(t, err)

	msg := "after"
	updated, err := svc.Update(context.Background(), &dto.UpdateLogRequest{Id: created.Id, Message: &msg})
	require.NoError(t, err)

	assert.Equal(t, "after", updated.Message)
	assert.Equal(t, entity.LevelWarn, updated.Level)
	assert.Equal(t, &userId, updated.UserId)
	assert.Equal(t, []string{"keep"}, updated.Tags)
	assert.True(t, updated.Timestamp.Equal(created.Timestamp))
}

func TestDeleteThenShowIsNotFound(t *testing.T) {
	repo := newStubLogRepo()
	svc := newTestService(repo, &stubPublisher{})

	created, err := svc.Ingest(context.Background(), &dto.IngestLogRequest{
		Level:   entity.LevelDebug,
		Message: "ephemeral",
		Source:  "api",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.Id))

	_, err = svc.Show(context.Background(), created.Id)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteMissingIdIsNotFound(t *testing.T) {
	svc := newTestService(newStubLogRepo(), &stubPublisher{})

	err := svc.Delete(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCompileFilterClauseCount(t *testing.T) {
	now := time.Now()
	full := dto.LogFilter{
		Level:     entity.LevelError,
		Source:    "api",
		UserId:    "u1",
		StartDate: &now,
		EndDate:   &now,
		Query:     "boom",
	}
	assert.Len(t, compileFilter(full), 6)
	assert.Empty(t, compileFilter(dto.LogFilter{}))
}
