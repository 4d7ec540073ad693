package hash

import "strings"

// Password hashes new secrets with the preferred algorithm and verifies
// stored digests with whichever algorithm produced them. User directories
// imported from other systems may hold bcrypt and argon2id digests side by side.
type Password struct {
	preferred Hash
	bcrypt    *Bcrypt
	argon2id  *Argon2id
}

// NewPassword builds a Password. algorithm is "argon2id" or "bcrypt" (default).
func NewPassword(algorithm string, bc *Bcrypt, a2 *Argon2id) *Password {
	p := &Password{bcrypt: bc, argon2id: a2, preferred: bc}
	if strings.EqualFold(strings.TrimSpace(algorithm), "argon2id") {
		p.preferred = a2
	}
	return p
}

// Hash hashes str with the preferred algorithm.
func (p *Password) Hash(str string) ([]byte, error) {
	return p.preferred.Hash(str)
}

// Verify picks the algorithm from the digest prefix.
func (p *Password) Verify(hashed, str string) bool {
	switch {
	case strings.HasPrefix(hashed, argon2idPrefix):
		return p.argon2id.Verify(hashed, str)
	case isBcrypt(hashed):
		return p.bcrypt.Verify(hashed, str)
	default:
		return false
	}
}
