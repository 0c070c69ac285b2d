// File: internal/repository/sqlstore/store.go
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the relational backend. SQLite is the default; Postgres is used
// when the deployment provides a DSN for it.
type Store struct {
	db           *gorm.DB
	users        *userRepository
	turns        *turnRepository
	stressLogs   *stressLogRepository
	helpRequests *helpRequestRepository
}

// Open connects to the database identified by driver and dsn.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return New(db), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		users:        &userRepository{db: db},
		turns:        &turnRepository{db: db},
		stressLogs:   &stressLogRepository{db: db},
		helpRequests: &helpRequestRepository{db: db},
	}
}

func (s *Store) Users() repository.UserRepository               { return s.users }
func (s *Store) Turns() repository.TurnRepository               { return s.turns }
func (s *Store) StressLogs() repository.StressLogRepository     { return s.stressLogs }
func (s *Store) HelpRequests() repository.HelpRequestRepository { return s.helpRequests }

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&domain.User{},
		&domain.ChatTurn{},
		&domain.StressLog{},
		&domain.HelpRequest{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	case strings.Contains(strings.ToLower(err.Error()), "unique constraint"),
		strings.Contains(strings.ToLower(err.Error()), "duplicate key"):
		// drivers without an error translator still report the constraint by name
		return repository.ErrDuplicate
	}
	return err
}

var _ repository.Store = (*Store)(nil)
