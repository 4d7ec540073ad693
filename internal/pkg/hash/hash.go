package hash

// Hash turns a secret into a storable digest and checks plaintext against it.
type Hash interface {
	// Hash returns the encoded digest of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches the stored digest.
	Verify(hashed, str string) bool
}
