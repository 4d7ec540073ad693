package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when a key is absent or past its deadline.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrCantDecode is returned when a stored value cannot be decoded.
	ErrCantDecode = errors.New("kvstore: can't decode value")

	// ErrCantEncode is returned when a value cannot be encoded for storage.
	ErrCantEncode = errors.New("kvstore: can't encode value")
)

// Store is a byte-oriented key/value store with absolute per-key deadlines.
//
// Every operation is atomic with respect to other operations on the same key.
// Implementations never return a value whose deadline has passed.
type Store interface {
	io.Closer

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key until expiresAt, replacing any previous value.
	Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndDelete removes key only while it still holds expected and
	// reports whether it did. Two callers racing on the same value cannot both win.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)

	// Sweep removes entries whose deadline has passed and returns how many
	// were removed. Backends with native expiry return 0.
	Sweep(ctx context.Context) (int, error)
}

// JSON is a typed view over a Store. Keys are namespaced with Prefix.
type JSON[T any] struct {
	Underlying Store
	Prefix     string
}

func (j *JSON[T]) key(k string) string {
	return j.Prefix + k
}

// Get decodes the value stored under key.
func (j *JSON[T]) Get(ctx context.Context, key string) (T, error) {
	var result T

	data, err := j.Underlying.Get(ctx, j.key(key))
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("%w: %w", ErrCantDecode, err)
	}

	return result, nil
}

// GetRaw returns both the decoded value and the stored bytes, the latter
// being what CompareAndDelete expects.
func (j *JSON[T]) GetRaw(ctx context.Context, key string) (T, []byte, error) {
	var result T

	data, err := j.Underlying.Get(ctx, j.key(key))
	if err != nil {
		return result, nil, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, nil, fmt.Errorf("%w: %w", ErrCantDecode, err)
	}

	return result, data, nil
}

// Set encodes value and stores it until expiresAt.
func (j *JSON[T]) Set(ctx context.Context, key string, value T, expiresAt time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCantEncode, err)
	}

	return j.Underlying.Set(ctx, j.key(key), data, expiresAt)
}

// Delete removes key.
func (j *JSON[T]) Delete(ctx context.Context, key string) error {
	return j.Underlying.Delete(ctx, j.key(key))
}

// CompareAndDelete removes key while it still holds raw.
func (j *JSON[T]) CompareAndDelete(ctx context.Context, key string, raw []byte) (bool, error) {
	return j.Underlying.CompareAndDelete(ctx, j.key(key), raw)
}
