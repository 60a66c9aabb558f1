package model

import (
	"time"

	"gorm.io/datatypes"
)

type LogRecord struct {
	Id        uint64         `gorm:"primaryKey;autoIncrement"`
	Level     string         `gorm:"type:varchar(10);not null;index"`
	Message   string         `gorm:"type:varchar(1000);not null"`
	Source    string         `gorm:"type:varchar(100);not null;index"`
	UserId    *string        `gorm:"type:varchar(64);index"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	Timestamp time.Time      `gorm:"not null;index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (LogRecord) TableName() string {
	return "log_records"
}
