package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

type userRepository struct {
	db *bolt.DB
}

// Create stores the user and claims its username in the same transaction.
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := user.IsValid(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		users, err := bucket(tx, bucketUsers)
		if err != nil {
			return err
		}
		names, err := bucket(tx, bucketUsernames)
		if err != nil {
			return err
		}
		if names.Get([]byte(user.Username)) != nil {
			return repository.ErrDuplicate
		}
		id, err := users.NextSequence()
		if err != nil {
			return err
		}
		user.ID = uint(id)
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now()
		}
		if err := names.Put([]byte(user.Username), itob(id)); err != nil {
			return err
		}
		return putJSON(users, itob(id), newUserDocument(user))
	})
	if err != nil {
		user.ID = 0
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		users, err := bucket(tx, bucketUsers)
		if err != nil {
			return err
		}
		user, err = decodeUser(users.Get(itob(uint64(id))))
		return err
	})
	return user, err
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		names, err := bucket(tx, bucketUsernames)
		if err != nil {
			return err
		}
		id := names.Get([]byte(username))
		if id == nil {
			return repository.ErrNotFound
		}
		users, err := bucket(tx, bucketUsers)
		if err != nil {
			return err
		}
		user, err = decodeUser(users.Get(id))
		return err
	})
	return user, err
}

func decodeUser(raw []byte) (*domain.User, error) {
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	// Password carries json:"-" on the domain type, so documents use their own shape.
	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return doc.toDomain(), nil
}
