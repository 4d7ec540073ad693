package config

import (
	"io"
	"time"
)

// Config reads typed values from the loaded configuration.
//
// Missing keys yield the zero value of the requested type (or the registered
// default, see WithDefaults). Callers that must distinguish "absent" from
// "zero" use IsSet.
type Config interface {
	io.Closer

	// IsSet reports whether key has a value, including a registered default.
	IsSet(key string) bool

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond reads an integer and returns it as seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer and returns it as minutes.
	GetMinute(key string) time.Duration

	// GetBinary reads a base64 encoded value.
	GetBinary(key string) []byte

	// GetArray reads a comma separated value (<element1>,<element2>,...).
	// Empty elements are dropped.
	GetArray(key string) []string

	// GetMap reads a value stored as <key1>:<value1>,<key2>:<value2>,...
	GetMap(key string) map[string]string
}
