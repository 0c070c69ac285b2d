// File: internal/repository/sqlstore/turn_repository.go
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-wellness/internal/domain"
)

type turnRepository struct {
	db *gorm.DB
}

// Append writes every turn in one transaction so an exchange is never half-stored.
func (r *turnRepository) Append(ctx context.Context, turns ...*domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	for _, t := range turns {
		if t.UserID == 0 {
			return errors.New("turn has no owner")
		}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range turns {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[TurnRepository] Append error for user ID %d: %v", turns[0].UserID, err)
		return fmt.Errorf("database error appending turns: %w", translate(err))
	}
	return nil
}

// Recent returns the newest turns first; id breaks timestamp ties.
func (r *turnRepository) Recent(ctx context.Context, userID uint, limit int) ([]domain.ChatTurn, error) {
	if limit <= 0 {
		return nil, nil
	}
	var turns []domain.ChatTurn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		log.Printf("[TurnRepository] Recent error for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("database error fetching turns: %w", err)
	}
	return turns, nil
}
