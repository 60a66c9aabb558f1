package mapper

import (
	"encoding/json"
	"fmt"

	"loghive-be/internal/entity"
	"loghive-be/internal/model"
	"loghive-be/internal/pkg/apperror"

	"gorm.io/datatypes"
)

// LogRecordMapper carries the codec between the structured in-memory record
// and its stored form. Absent metadata/tags stay absent (NULL) through the
// round trip; they are never coerced into an empty object or array.
type LogRecordMapper struct{}

func NewLogRecordMapper() *LogRecordMapper {
	return &LogRecordMapper{}
}

func (m *LogRecordMapper) ToModel(e *entity.LogRecord) (*model.LogRecord, error) {
	if e == nil {
		return nil, nil
	}

	metadata, err := m.EncodeMetadata(e.Metadata)
	if err != nil {
		return nil, err
	}
	tags, err := m.EncodeTags(e.Tags)
	if err != nil {
		return nil, err
	}

	return &model.LogRecord{
		Id:        e.Id,
		Level:     e.Level,
		Message:   e.Message,
		Source:    e.Source,
		UserId:    e.UserId,
		Metadata:  metadata,
		Tags:      tags,
		Timestamp: e.Timestamp,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, nil
}

func (m *LogRecordMapper) ToEntity(r *model.LogRecord) (*entity.LogRecord, error) {
	if r == nil {
		return nil, nil
	}

	metadata, err := m.DecodeMetadata(r.Metadata)
	if err != nil {
		return nil, apperror.Decode(fmt.Sprintf("malformed stored metadata for log record %d", r.Id), err)
	}
	tags, err := m.DecodeTags(r.Tags)
	if err != nil {
		return nil, apperror.Decode(fmt.Sprintf("malformed stored tags for log record %d", r.Id), err)
	}

	return &entity.LogRecord{
		Id:        r.Id,
		Level:     r.Level,
		Message:   r.Message,
		Source:    r.Source,
		UserId:    r.UserId,
		Metadata:  metadata,
		Tags:      tags,
		Timestamp: r.Timestamp,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (m *LogRecordMapper) EncodeMetadata(metadata map[string]interface{}) (datatypes.JSON, error) {
	if metadata == nil {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (m *LogRecordMapper) DecodeMetadata(stored datatypes.JSON) (map[string]interface{}, error) {
	if isStoredNull(stored) {
		return nil, nil
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(stored, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (m *LogRecordMapper) EncodeTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		return nil, nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (m *LogRecordMapper) DecodeTags(stored datatypes.JSON) ([]string, error) {
	if isStoredNull(stored) {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(stored, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func isStoredNull(stored datatypes.JSON) bool {
	return len(stored) == 0 || string(stored) == "null"
}
