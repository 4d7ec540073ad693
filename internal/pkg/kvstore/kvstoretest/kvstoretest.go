// Package kvstoretest holds the behaviour every kvstore.Store backend must share.
package kvstoretest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
)

// Common runs the shared suite against s. When clk is non-nil the backend
// reads time from it and the expiry cases run as well; keys are namespaced
// by t.Name() so a shared remote backend can be reused.
func Common(t *testing.T, s kvstore.Store, clk *clock.Frozen) {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	if clk != nil {
		now = clk.Now()
	}
	far := now.Add(time.Hour)
	prefix := t.Name() + ":"

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, prefix+"missing")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
		assert.NoError(t, s.Delete(ctx, prefix+"missing"))
	})

	t.Run("set get delete", func(t *testing.T) {
		key := prefix + "sgd"

		require.NoError(t, s.Set(ctx, key, []byte("one"), far))
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), got)

		require.NoError(t, s.Set(ctx, key, []byte("two"), far))
		got, err = s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)

		require.NoError(t, s.Delete(ctx, key))
		_, err = s.Get(ctx, key)
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("compare and delete", func(t *testing.T) {
		key := prefix + "cad"
		require.NoError(t, s.Set(ctx, key, []byte("v1"), far))

		ok, err := s.CompareAndDelete(ctx, key, []byte("stale"))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.CompareAndDelete(ctx, key, []byte("v1"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.CompareAndDelete(ctx, key, []byte("v1"))
		require.NoError(t, err)
		assert.False(t, ok, "second delete must lose")
	})

	t.Run("compare and delete has a single winner", func(t *testing.T) {
		key := prefix + "race"
		require.NoError(t, s.Set(ctx, key, []byte("v"), far))

		const workers = 16
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.CompareAndDelete(ctx, key, []byte("v"))
				if err == nil && ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
	})

	if clk == nil {
		return
	}

	t.Run("expiry", func(t *testing.T) {
		key := prefix + "exp"
		require.NoError(t, s.Set(ctx, key, []byte("v"), clk.Now().Add(time.Minute)))

		clk.Advance(59 * time.Second)
		_, err := s.Get(ctx, key)
		require.NoError(t, err)

		clk.Advance(time.Second)
		_, err = s.Get(ctx, key)
		assert.ErrorIs(t, err, kvstore.ErrNotFound, "deadline is exclusive")

		ok, err := s.CompareAndDelete(ctx, key, []byte("v"))
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)
	})
}
