package wordset

import (
	"context"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketBadWords     = []byte("bad_words")
	bucketAllowedWords = []byte("allowed_words")
)

// BoltStore keeps each word list as the key set of a bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "bbolt open")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBadWords, bucketAllowedWords} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create buckets")
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) BadWords(ctx context.Context) ([]string, error) {
	return s.keys(bucketBadWords)
}

func (s *BoltStore) AllowedWords(ctx context.Context) ([]string, error) {
	return s.keys(bucketAllowedWords)
}

func (s *BoltStore) AddBadWords(ctx context.Context, words ...string) error {
	return s.put(bucketBadWords, words)
}

func (s *BoltStore) AddAllowedWords(ctx context.Context, words ...string) error {
	return s.put(bucketAllowedWords, words)
}

func (s *BoltStore) keys(bucket []byte) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Keys are only valid inside the transaction; string() copies them.
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read bucket %s", bucket)
	}
	return out, nil
}

func (s *BoltStore) put(bucket []byte, words []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		for _, w := range words {
			if w == "" {
				continue
			}
			if err := b.Put([]byte(w), []byte{}); err != nil {
				return errors.Wrapf(err, "put %q", w)
			}
		}
		return nil
	})
}
