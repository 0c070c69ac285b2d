// Package factory selects the storage backend at startup.
package factory

import (
	"context"
	"fmt"

	"github.com/iyunix/go-wellness/internal/repository"
	"github.com/iyunix/go-wellness/internal/repository/docstore"
	"github.com/iyunix/go-wellness/internal/repository/sqlstore"
)

const (
	BackendSQL      = "sql"
	BackendDocument = "document"
)

type Options struct {
	Backend      string
	DBDriver     string
	DBDSN        string
	DocumentPath string
}

// Open returns a migrated store for the configured backend.
func Open(ctx context.Context, opts Options) (repository.Store, error) {
	var (
		store repository.Store
		err   error
	)
	switch opts.Backend {
	case BackendSQL, "":
		store, err = sqlstore.Open(opts.DBDriver, opts.DBDSN)
	case BackendDocument:
		store, err = docstore.Open(opts.DocumentPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate %s store: %w", opts.Backend, err)
	}
	return store, nil
}
