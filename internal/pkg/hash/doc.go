// Package hash provides helpers for hashing and verifying secrets.
//
// Two families live here. Password hashes (bcrypt, argon2id) are salted and
// slow and back the credential step of a login. The keyed HMAC-SHA256 digest is
// deterministic, which makes it usable as a lookup key: challenge store keys
// are derived from it so raw usernames never reach a shared cache.
package hash
