package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/iyunix/go-wellness/internal/domain"
)

type turnRepository struct {
	db *bolt.DB
}

// Append writes all turns in a single bolt transaction.
func (r *turnRepository) Append(ctx context.Context, turns ...*domain.ChatTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, bucketTurns)
		if err != nil {
			return err
		}
		for _, t := range turns {
			if t.UserID == 0 {
				return errors.New("turn has no owner")
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			t.ID = uint(seq)
			if t.CreatedAt.IsZero() {
				t.CreatedAt = time.Now()
			}
			if err := putJSON(b, timelineKey(t.UserID, t.CreatedAt, seq), t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("document store error appending turns: %w", err)
	}
	return nil
}

func (r *turnRepository) Recent(ctx context.Context, userID uint, limit int) ([]domain.ChatTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	var turns []domain.ChatTurn
	err := r.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, bucketTurns)
		if err != nil {
			return err
		}
		return newestFirst(b, userID, limit, func(v []byte) error {
			var t domain.ChatTurn
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("decode turn: %w", err)
			}
			turns = append(turns, t)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("document store error fetching turns: %w", err)
	}
	return turns, nil
}
