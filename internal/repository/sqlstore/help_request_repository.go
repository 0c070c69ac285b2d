// File: internal/repository/sqlstore/help_request_repository.go
package sqlstore

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

type helpRequestRepository struct {
	db *gorm.DB
}

func (r *helpRequestRepository) Create(ctx context.Context, req *domain.HelpRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		log.Printf("[HelpRequestRepository] Create error for user ID %d: %v", req.UserID, err)
		return fmt.Errorf("database error creating help request: %w", translate(err))
	}
	return nil
}

func (r *helpRequestRepository) FindByID(ctx context.Context, id uint) (*domain.HelpRequest, error) {
	var req domain.HelpRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// UpdateStatus changes the status of a help request.
func (r *helpRequestRepository) UpdateStatus(ctx context.Context, id uint, status domain.HelpRequestStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.HelpRequest{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		log.Printf("[HelpRequestRepository] UpdateStatus error for ID %d: %v", id, result.Error)
		return fmt.Errorf("database error updating help request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
