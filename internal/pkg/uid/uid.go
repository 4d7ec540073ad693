// Package uid generates identifiers: sortable numeric ids for records,
// UUIDs for correlation and token ids, and opaque random handles for
// anything a client holds on to.
package uid

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
