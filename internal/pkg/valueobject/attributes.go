package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// ErrScanValueNotBytes indicates the database value is not JSON text.
var ErrScanValueNotBytes = errors.New("valueobject: attributes scan value is not []byte")

// Attributes holds multi-valued user attributes keyed by name, stored as a
// JSON object of string arrays (jsonb). Single string values are accepted on
// read and normalised to a one-element slice.
type Attributes map[string][]string

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *Attributes) Scan(value any) error {
	if value == nil {
		*a = Attributes{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case json.RawMessage:
		raw = v
	case map[string]any:
		*a = fromAny(v)
		return nil
	default:
		return ErrScanValueNotBytes
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	*a = fromAny(decoded)
	return nil
}

func fromAny(m map[string]any) Attributes {
	out := make(Attributes, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = []string{t}
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					out[k] = append(out[k], s)
				}
			}
		case []string:
			out[k] = t
		}
	}
	return out
}

// First returns the first non-blank value of key, trimmed, or "".
func (a Attributes) First(key string) string {
	for _, v := range a[key] {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Set replaces every value of key.
func (a Attributes) Set(key string, values ...string) {
	a[key] = values
}

// Has reports whether key carries at least one non-blank value.
func (a Attributes) Has(key string) bool {
	return a.First(key) != ""
}
