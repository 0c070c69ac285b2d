package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/iyunix/go-wellness/internal/domain"
)

type stressLogRepository struct {
	db *bolt.DB
}

func (r *stressLogRepository) Create(ctx context.Context, entry *domain.StressLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, bucketStressLogs)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry.ID = uint(seq)
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now()
		}
		return putJSON(b, timelineKey(entry.UserID, entry.Timestamp, seq), entry)
	})
	if err != nil {
		return fmt.Errorf("document store error creating stress log: %w", err)
	}
	return nil
}

func (r *stressLogRepository) Recent(ctx context.Context, userID uint, limit int) ([]domain.StressLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	var logs []domain.StressLog
	err := r.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, bucketStressLogs)
		if err != nil {
			return err
		}
		return newestFirst(b, userID, limit, func(v []byte) error {
			var entry domain.StressLog
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode stress log: %w", err)
			}
			logs = append(logs, entry)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("document store error fetching stress logs: %w", err)
	}
	return logs, nil
}
