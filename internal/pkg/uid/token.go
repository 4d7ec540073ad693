package uid

import (
	"crypto/rand"
	"encoding/base64"
)

// Token generates unguessable URL-safe strings from n random bytes.
type Token struct {
	size int
}

// NewToken returns a Token generator; sizes under 16 bytes are raised to 16.
func NewToken(size int) *Token {
	return &Token{size: max(size, 16)}
}

// Generate returns base64url (unpadded) random bytes.
func (t *Token) Generate() string {
	b := make([]byte, t.size)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)

	return base64.RawURLEncoding.EncodeToString(b)
}
