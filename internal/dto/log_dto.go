package dto

import "time"

type IngestLogRequest struct {
	Level     string                 `json:"level" validate:"required,oneof=error warn info debug"`
	Message   string                 `json:"message" validate:"required,min=1,max=1000"`
	Source    string                 `json:"source" validate:"required,min=1,max=100"`
	UserId    *string                `json:"user_id" validate:"omitempty,max=64"`
	Metadata  map[string]interface{} `json:"metadata"`
	Tags      []string               `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	Timestamp *time.Time             `json:"timestamp"` // Defaults to ingestion time when omitted
}

// UpdateLogRequest carries the partial update set. Pointers distinguish
// "field absent" from a supplied zero value; only these five fields are
// mutable after creation.
type UpdateLogRequest struct {
	Id       uint64                  `json:"-"`
	Level    *string                 `json:"level" validate:"omitempty,oneof=error warn info debug"`
	Message  *string                 `json:"message" validate:"omitempty,min=1,max=1000"`
	Source   *string                 `json:"source" validate:"omitempty,min=1,max=100"`
	Metadata *map[string]interface{} `json:"metadata"`
	Tags     *[]string               `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type LogResponse struct {
	Id        uint64                 `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Source    string                 `json:"source"`
	UserId    *string                `json:"user_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Tags      []string               `json:"tags,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// LogFilter is the structured criteria set; every present field contributes
// exactly one conjunctive clause.
type LogFilter struct {
	Level     string
	Source    string
	UserId    string
	StartDate *time.Time
	EndDate   *time.Time
	Query     string
}

type ListLogsRequest struct {
	Filter    LogFilter
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type SearchLogsRequest struct {
	Query     string
	Filter    LogFilter // UserId is ignored for search
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ListLogsResponse struct {
	Items      []*LogResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

type SearchLogsResponse struct {
	Query      string         `json:"query"`
	Items      []*LogResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

type LogStatsRequest struct {
	Source      string
	StartDate   *time.Time
	EndDate     *time.Time
	Granularity string
}

type PeriodStat struct {
	Period string `json:"period"`
	Level  string `json:"level"`
	Count  int64  `json:"count"`
}

type LevelTotal struct {
	Level string `json:"level"`
	Total int64  `json:"total"`
}

type LogStatsResponse struct {
	PeriodStats   []PeriodStat `json:"period_stats"`
	TotalsByLevel []LevelTotal `json:"totals_by_level"`
}
