package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/cv-project/internal/models"
)

type RequestLogRepository interface {
	Create(ctx context.Context, entry *models.RequestLog) error
	ListRecent(limit int) ([]models.RequestLog, error)
	ListPage(page, pageSize int) ([]models.RequestLog, int64, error)
	Count() (int64, error)
	CountBetween(from, to time.Time) (int64, error)
	DeleteOldest(count int64) (int64, error)
}

type requestLogRepository struct {
	db *gorm.DB
}

func NewRequestLogRepository(db *gorm.DB) RequestLogRepository {
	return &requestLogRepository{db: db}
}

func (r *requestLogRepository) Create(ctx context.Context, entry *models.RequestLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create request log: %w", err)
	}
	return nil
}

func (r *requestLogRepository) ListRecent(limit int) ([]models.RequestLog, error) {
	var logs []models.RequestLog
	err := r.db.
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}
	return logs, nil
}

func (r *requestLogRepository) ListPage(page, pageSize int) ([]models.RequestLog, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	total, err := r.Count()
	if err != nil {
		return nil, 0, err
	}

	var logs []models.RequestLog
	err = r.db.
		Order("timestamp DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list request logs: %w", err)
	}
	return logs, total, nil
}

func (r *requestLogRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.RequestLog{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count request logs: %w", err)
	}
	return total, nil
}

// CountBetween counts logs with from <= timestamp < to.
func (r *requestLogRepository) CountBetween(from, to time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&models.RequestLog{}).
		Where("timestamp >= ? AND timestamp < ?", from.UTC(), to.UTC()).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count request logs: %w", err)
	}
	return total, nil
}

// DeleteOldest removes the count oldest rows by timestamp and returns how many went.
func (r *requestLogRepository) DeleteOldest(count int64) (int64, error) {
	if count <= 0 {
		return 0, nil
	}

	result := r.db.Exec(
		`DELETE FROM request_logs WHERE id IN (
			SELECT id FROM request_logs ORDER BY timestamp ASC, id ASC LIMIT ?
		)`,
		count,
	)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old request logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
