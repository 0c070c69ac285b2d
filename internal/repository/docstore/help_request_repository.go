package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

type helpRequestRepository struct {
	db *bolt.DB
}

func (r *helpRequestRepository) Create(ctx context.Context, req *domain.HelpRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, bucketHelpRequests)
		if err != nil {
			return err
		}
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		req.ID = uint(id)
		if req.Timestamp.IsZero() {
			req.Timestamp = time.Now()
		}
		if req.Status == "" {
			req.Status = domain.HelpRequestPending
		}
		return putJSON(b, itob(uint64(id)), req)
	})
	if err != nil {
		return fmt.Errorf("document store error creating help request: %w", err)
	}
	return nil
}

func (r *helpRequestRepository) FindByID(ctx context.Context, id uint) (*domain.HelpRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var req *domain.HelpRequest
	err := r.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, bucketHelpRequests)
		if err != nil {
			return err
		}
		req, err = decodeHelpRequest(b.Get(itob(uint64(id))))
		return err
	})
	return req, err
}

func (r *helpRequestRepository) UpdateStatus(ctx context.Context, id uint, status domain.HelpRequestStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, bucketHelpRequests)
		if err != nil {
			return err
		}
		req, err := decodeHelpRequest(b.Get(itob(uint64(id))))
		if err != nil {
			return err
		}
		req.Status = status
		return putJSON(b, itob(uint64(id)), req)
	})
}

func decodeHelpRequest(raw []byte) (*domain.HelpRequest, error) {
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	var req domain.HelpRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode help request: %w", err)
	}
	return &req, nil
}
