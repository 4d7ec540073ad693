package kvstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
)

var (
	ErrUnknownDriver   = errors.New("kvstore: unknown driver")
	ErrMissingRedis    = errors.New("kvstore: redis driver needs a client")
	ErrMissingBoltPath = errors.New("kvstore: bbolt driver needs a path")
)

type FactoryOptions struct {
	Memory struct {
		MaxEntries int
	}
	Redis struct {
		Client redis.UniversalClient
	}
	Bolt struct {
		Path string
	}
}

// NewFromDriver builds the Store named by driver: "memory", "redis" or "bbolt".
func NewFromDriver(driver string, opts FactoryOptions, clk clock.Clocker) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return NewMemory(clk, opts.Memory.MaxEntries), nil
	case "redis":
		if opts.Redis.Client == nil {
			return nil, ErrMissingRedis
		}
		return NewRedis(opts.Redis.Client), nil
	case "bbolt", "bolt":
		if opts.Bolt.Path == "" {
			return nil, ErrMissingBoltPath
		}
		return OpenBolt(opts.Bolt.Path, clk)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
