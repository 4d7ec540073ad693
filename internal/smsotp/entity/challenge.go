package entity

import (
	"crypto/subtle"
	"strings"
	"time"
)

// IdentityKey addresses one user across both channels.
type IdentityKey struct {
	Realm    string
	Username string
}

// NewIdentityKey normalises realm and username to lower case.
func NewIdentityKey(realm, username string) IdentityKey {
	return IdentityKey{
		Realm:    strings.ToLower(strings.TrimSpace(realm)),
		Username: strings.ToLower(strings.TrimSpace(username)),
	}
}

func (k IdentityKey) String() string {
	return k.Realm + ":" + k.Username
}

func (k IdentityKey) IsZero() bool {
	return k.Realm == "" || k.Username == ""
}

// Challenge is the single active code for one identity. It is created once
// and deleted once; Code never changes.
type Challenge struct {
	ID        int64     `json:"id,string"`
	Identity  string    `json:"identity"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	// Session is the keyed handle of the interactive session it was issued
	// to, empty on the non-interactive channel.
	Session string `json:"session,omitempty"`
}

// BoundTo reports whether the challenge may be answered from the session
// with the given keyed handle. Unbound challenges answer any session.
func (c Challenge) BoundTo(session string) bool {
	return c.Session == "" || c.Session == session
}

// Expired reports whether now is past ExpiresAt. A code submitted exactly at
// ExpiresAt is still valid.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Matches compares candidate to Code in constant time.
func (c Challenge) Matches(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Code), []byte(candidate)) == 1
}

// ExpiresIn is the remaining lifetime at now, never negative.
func (c Challenge) ExpiresIn(now time.Time) time.Duration {
	return max(c.ExpiresAt.Sub(now), 0)
}
