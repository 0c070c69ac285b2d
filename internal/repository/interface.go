// File: internal/repository/interface.go
package repository

import (
	"context"

	"github.com/iyunix/go-wellness/internal/domain"
)

// UserRepository is the identity capability contract shared by every backend.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TurnRepository is the durable, per-user ordered chat log.
type TurnRepository interface {
	// Append stores all turns or none of them.
	Append(ctx context.Context, turns ...*domain.ChatTurn) error
	// Recent returns at most limit turns for the user, newest first.
	Recent(ctx context.Context, userID uint, limit int) ([]domain.ChatTurn, error)
}

// StressLogRepository is append-only.
type StressLogRepository interface {
	Create(ctx context.Context, log *domain.StressLog) error
	// Recent returns at most limit samples for the user, newest first.
	Recent(ctx context.Context, userID uint, limit int) ([]domain.StressLog, error)
}

type HelpRequestRepository interface {
	Create(ctx context.Context, req *domain.HelpRequest) error
	FindByID(ctx context.Context, id uint) (*domain.HelpRequest, error)
	UpdateStatus(ctx context.Context, id uint, status domain.HelpRequestStatus) error
}

// Store bundles the repositories of one storage backend.
type Store interface {
	Users() UserRepository
	Turns() TurnRepository
	StressLogs() StressLogRepository
	HelpRequests() HelpRequestRepository
	Migrate(ctx context.Context) error
	Close() error
}
