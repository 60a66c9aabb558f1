package dto

import "time"

// LogAlertMessage travels over the alert topic when an error-level record
// is ingested.
type LogAlertMessage struct {
	RecordId  uint64    `json:"record_id"`
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
