package otp

import (
	"crypto/rand"
	"errors"
	"io"
)

// ErrInvalidLength is returned when a code of fewer than one digit is requested.
var ErrInvalidLength = errors.New("otp: code length must be at least 1")

// Generator produces numeric codes.
type Generator interface {
	Generate(length int) (string, error)
}

// Numeric draws digits from a cryptographically secure source.
type Numeric struct {
	rand io.Reader
}

// NewNumeric returns a generator backed by crypto/rand.
func NewNumeric() *Numeric {
	return &Numeric{rand: rand.Reader}
}

// NewNumericFrom uses r as the entropy source. Tests use it to make codes predictable.
func NewNumericFrom(r io.Reader) *Numeric {
	return &Numeric{rand: r}
}

// Generate returns a string of exactly length decimal digits.
//
// Bytes >= 250 are discarded so that each of the ten digits keeps the same
// probability (256 is not a multiple of 10).
func (n *Numeric) Generate(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}

	code := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(code) < length {
		if _, err := io.ReadFull(n.rand, buf[:length-len(code)]); err != nil {
			return "", err
		}

		for _, b := range buf[:length-len(code)] {
			if b >= 250 {
				continue
			}
			code = append(code, '0'+b%10)
		}
	}

	return string(code), nil
}
