package kvstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore/kvstoretest"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMemory(t *testing.T) {
	clk := clock.NewFrozen(epoch)
	kvstoretest.Common(t, kvstore.NewMemory(clk, 0), clk)
}

func TestBolt(t *testing.T) {
	clk := clock.NewFrozen(epoch)
	s, err := kvstore.OpenBolt(filepath.Join(t.TempDir(), "kv.db"), clk)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	kvstoretest.Common(t, s, clk)
}

func TestMemory_MaxEntries(t *testing.T) {
	// Arrange
	ctx := context.Background()
	clk := clock.NewFrozen(epoch)
	s := kvstore.NewMemory(clk, 2)

	require.NoError(t, s.Set(ctx, "late", []byte("1"), epoch.Add(time.Hour)))
	require.NoError(t, s.Set(ctx, "soon", []byte("2"), epoch.Add(time.Minute)))

	// Act
	require.NoError(t, s.Set(ctx, "new", []byte("3"), epoch.Add(2*time.Hour)))

	// Assert
	assert.EqualValues(t, 2, s.Len())
	_, err := s.Get(ctx, "soon")
	assert.ErrorIs(t, err, kvstore.ErrNotFound, "earliest deadline is evicted")
	_, err = s.Get(ctx, "late")
	assert.NoError(t, err)
}

func TestMemory_MaxEntriesPrefersSweep(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFrozen(epoch)
	s := kvstore.NewMemory(clk, 2)

	require.NoError(t, s.Set(ctx, "a", []byte("1"), epoch.Add(time.Minute)))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), epoch.Add(time.Hour)))
	clk.Advance(2 * time.Minute)

	require.NoError(t, s.Set(ctx, "c", []byte("3"), epoch.Add(time.Hour)))

	_, err := s.Get(ctx, "b")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemory_Close(t *testing.T) {
	ctx := context.Background()
	s := kvstore.NewMemory(clock.New(), 0)
	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Now().Add(time.Hour)))

	require.NoError(t, s.Close())

	assert.EqualValues(t, 0, s.Len())
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSON(t *testing.T) {
	// Arrange
	ctx := context.Background()
	clk := clock.NewFrozen(epoch)
	mem := kvstore.NewMemory(clk, 0)
	j := &kvstore.JSON[payload]{Underlying: mem, Prefix: "p:"}

	// Act
	require.NoError(t, j.Set(ctx, "k", payload{Name: "x", Count: 2}, epoch.Add(time.Minute)))
	got, raw, err := j.GetRaw(ctx, "k")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "x", Count: 2}, got)

	stored, err := mem.Get(ctx, "p:k")
	require.NoError(t, err)
	assert.Equal(t, stored, raw, "prefix applied")

	ok, err := j.CompareAndDelete(ctx, "k", raw)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = j.Get(ctx, "k")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestJSON_Decode(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemory(clock.New(), 0)
	require.NoError(t, mem.Set(ctx, "k", []byte("{not json"), time.Now().Add(time.Hour)))

	j := &kvstore.JSON[payload]{Underlying: mem}
	_, err := j.Get(ctx, "k")

	assert.ErrorIs(t, err, kvstore.ErrCantDecode)
}

func TestNewFromDriver(t *testing.T) {
	clk := clock.New()

	tests := []struct {
		name    string
		driver  string
		opts    func() kvstore.FactoryOptions
		wantErr error
	}{
		{name: "default memory", driver: "", opts: func() kvstore.FactoryOptions { return kvstore.FactoryOptions{} }},
		{name: "memory", driver: "Memory", opts: func() kvstore.FactoryOptions { return kvstore.FactoryOptions{} }},
		{name: "redis without client", driver: "redis", opts: func() kvstore.FactoryOptions { return kvstore.FactoryOptions{} }, wantErr: kvstore.ErrMissingRedis},
		{name: "bbolt without path", driver: "bbolt", opts: func() kvstore.FactoryOptions { return kvstore.FactoryOptions{} }, wantErr: kvstore.ErrMissingBoltPath},
		{
			name:   "bbolt",
			driver: "bbolt",
			opts: func() kvstore.FactoryOptions {
				var o kvstore.FactoryOptions
				o.Bolt.Path = filepath.Join(t.TempDir(), "f.db")
				return o
			},
		},
		{name: "unknown", driver: "etcd", opts: func() kvstore.FactoryOptions { return kvstore.FactoryOptions{} }, wantErr: kvstore.ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := kvstore.NewFromDriver(tt.driver, tt.opts(), clk)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
