// File: internal/repository/sqlstore/stress_log_repository.go
package sqlstore

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-wellness/internal/domain"
)

type stressLogRepository struct {
	db *gorm.DB
}

func (r *stressLogRepository) Create(ctx context.Context, entry *domain.StressLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("[StressLogRepository] Create error for user ID %d: %v", entry.UserID, err)
		return fmt.Errorf("database error creating stress log: %w", translate(err))
	}
	return nil
}

func (r *stressLogRepository) Recent(ctx context.Context, userID uint, limit int) ([]domain.StressLog, error) {
	if limit <= 0 {
		return nil, nil
	}
	var logs []domain.StressLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		log.Printf("[StressLogRepository] Recent error for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("database error fetching stress logs: %w", err)
	}
	return logs, nil
}
