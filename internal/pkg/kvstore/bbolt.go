package kvstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
)

var bucketName = []byte("kv")

// ErrCorruptRecord is returned for a stored record too short to hold its deadline.
var ErrCorruptRecord = errors.New("kvstore: bbolt record is corrupt")

// Bolt is a Store kept in a single bbolt file.
//
// Records live in one bucket. Each value is prefixed with its deadline as
// 8 big-endian bytes of Unix nanoseconds so Sweep can decide without decoding
// the payload. bbolt takes an exclusive file lock: only one process may open
// the file, so this backend suits single-node deployments.
type Bolt struct {
	db    *bbolt.DB
	clock clock.Clocker
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string, clk clock.Clocker) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open bbolt %q: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		return nil, errors.Join(fmt.Errorf("kvstore: create bucket: %w", err), db.Close())
	}

	return &Bolt{db: db, clock: clk}, nil
}

func encodeRecord(value []byte, expiresAt time.Time) []byte {
	rec := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(rec, uint64(expiresAt.UnixNano()))
	copy(rec[8:], value)

	return rec
}

func decodeRecord(rec []byte) ([]byte, time.Time, error) {
	if len(rec) < 8 {
		return nil, time.Time{}, ErrCorruptRecord
	}

	deadline := time.Unix(0, int64(binary.BigEndian.Uint64(rec)))

	return rec[8:], deadline, nil
}

func (s *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var result []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		rec := tx.Bucket(bucketName).Get([]byte(key))
		if rec == nil {
			return ErrNotFound
		}

		value, deadline, err := decodeRecord(rec)
		if err != nil {
			return err
		}
		if !s.clock.Now().Before(deadline) {
			return ErrNotFound
		}

		// bbolt memory is only valid inside the transaction
		result = bytes.Clone(value)
		return nil
	})

	return result, err
}

func (s *Bolt) Set(_ context.Context, key string, value []byte, expiresAt time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketName).Put([]byte(key), encodeRecord(value, expiresAt)); err != nil {
			return fmt.Errorf("%w: %w", ErrCantEncode, err)
		}
		return nil
	})
}

func (s *Bolt) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

func (s *Bolt) CompareAndDelete(_ context.Context, key string, expected []byte) (bool, error) {
	deleted := false

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketName)

		rec := bkt.Get([]byte(key))
		if rec == nil {
			return nil
		}

		value, deadline, err := decodeRecord(rec)
		if err != nil {
			return err
		}
		if !s.clock.Now().Before(deadline) || !bytes.Equal(value, expected) {
			return nil
		}

		deleted = true
		return bkt.Delete([]byte(key))
	})

	return deleted, err
}

func (s *Bolt) Sweep(_ context.Context) (int, error) {
	now := s.clock.Now()
	removed := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketName)

		// deleting while walking a cursor skips keys, so collect first
		var stale [][]byte
		if err := bkt.ForEach(func(k, rec []byte) error {
			_, deadline, err := decodeRecord(rec)
			if err != nil || !now.Before(deadline) {
				stale = append(stale, bytes.Clone(k))
			}
			return nil
		}); err != nil {
			return err
		}

		for _, k := range stale {
			if err := bkt.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})

	return removed, err
}

// Close releases the file lock.
func (s *Bolt) Close() error {
	return s.db.Close()
}
