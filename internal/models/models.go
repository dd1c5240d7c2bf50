package models

import (
	"time"
)

type TelemetryRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	ReceivedAt time.Time `gorm:"index;not null"`
	Record     string    `gorm:"type:jsonb;not null"`
}

func (TelemetryRecord) TableName() string {
	return "telemetry_records"
}
