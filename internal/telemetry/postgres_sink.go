package telemetry

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sdko-org/content-gateway/internal/models"
)

// PostgresSink stores each record as one row, serialized form untouched.
type PostgresSink struct {
	db *gorm.DB
}

func NewPostgresSink(db *gorm.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Send(ctx context.Context, record []byte) error {
	row := models.TelemetryRecord{
		ReceivedAt: time.Now(),
		Record:     string(record),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save telemetry record: %w", err)
	}
	return nil
}
