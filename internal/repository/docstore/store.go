// Package docstore keeps every record as a JSON document in an embedded
// bbolt database. Per-user collections use keys of the form
// userID|unixnano|seq so a reverse cursor scan yields newest-first results.
package docstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/iyunix/go-wellness/internal/repository"
)

var (
	bucketUsers        = []byte("users")
	bucketUsernames    = []byte("usernames")
	bucketTurns        = []byte("chat_turns")
	bucketStressLogs   = []byte("stress_logs")
	bucketHelpRequests = []byte("help_requests")

	allBuckets = [][]byte{bucketUsers, bucketUsernames, bucketTurns, bucketStressLogs, bucketHelpRequests}
)

type Store struct {
	db           *bolt.DB
	users        *userRepository
	turns        *turnRepository
	stressLogs   *stressLogRepository
	helpRequests *helpRequestRepository
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open document store %s: %w", path, err)
	}
	return &Store{
		db:           db,
		users:        &userRepository{db: db},
		turns:        &turnRepository{db: db},
		stressLogs:   &stressLogRepository{db: db},
		helpRequests: &helpRequestRepository{db: db},
	}, nil
}

func (s *Store) Users() repository.UserRepository               { return s.users }
func (s *Store) Turns() repository.TurnRepository               { return s.turns }
func (s *Store) StressLogs() repository.StressLogRepository     { return s.stressLogs }
func (s *Store) HelpRequests() repository.HelpRequestRepository { return s.helpRequests }

// Migrate creates any missing collections.
func (s *Store) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// timelineKey orders documents by owner, then time, then insertion.
func timelineKey(userID uint, at time.Time, seq uint64) []byte {
	key := make([]byte, 0, 24)
	key = append(key, itob(uint64(userID))...)
	key = append(key, itob(uint64(at.UnixNano()))...)
	key = append(key, itob(seq)...)
	return key
}

func bucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("bucket %s missing: run migrations first", name)
	}
	return b, nil
}

// newestFirst visits up to limit values whose key starts with the owner
// prefix, walking backwards from the newest entry.
func newestFirst(b *bolt.Bucket, userID uint, limit int, visit func(v []byte) error) error {
	prefix := itob(uint64(userID))
	c := b.Cursor()

	k, v := c.Seek(itob(uint64(userID) + 1))
	if k == nil {
		k, v = c.Last()
	} else {
		k, v = c.Prev()
	}
	for n := 0; k != nil && n < limit; k, v = c.Prev() {
		if len(k) < len(prefix) || string(k[:len(prefix)]) != string(prefix) {
			break
		}
		if err := visit(v); err != nil {
			return err
		}
		n++
	}
	return nil
}

func putJSON(b *bolt.Bucket, key []byte, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return b.Put(key, raw)
}

var _ repository.Store = (*Store)(nil)
