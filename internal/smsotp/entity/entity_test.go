package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shandysiswandi/smsotp/internal/pkg/valueobject"
)

func TestNewIdentityKey(t *testing.T) {
	k := NewIdentityKey(" Acme ", "Alice")

	assert.Equal(t, "acme:alice", k.String())
	assert.False(t, k.IsZero())
	assert.True(t, NewIdentityKey("acme", " ").IsZero())
}

func TestChallenge_Expired(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Challenge{Code: "482913", IssuedAt: t0, ExpiresAt: t0.Add(300 * time.Second)}

	tests := []struct {
		name    string
		at      time.Time
		expired bool
	}{
		{name: "fresh", at: t0.Add(100 * time.Second), expired: false},
		{name: "exact deadline", at: t0.Add(300 * time.Second), expired: false},
		{name: "one nanosecond late", at: t0.Add(300*time.Second + 1), expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, c.Expired(tt.at))
		})
	}

	assert.Equal(t, 200*time.Second, c.ExpiresIn(t0.Add(100*time.Second)))
	assert.Equal(t, time.Duration(0), c.ExpiresIn(t0.Add(time.Hour)))
}

func TestChallenge_Matches(t *testing.T) {
	c := Challenge{Code: "012345"}

	assert.True(t, c.Matches("012345"))
	assert.False(t, c.Matches("12345"))
	assert.False(t, c.Matches("012346"))
	assert.False(t, c.Matches(""))
}

func TestParseRequirement(t *testing.T) {
	tests := map[string]Requirement{
		"":             RequirementRequired,
		"REQUIRED":     RequirementRequired,
		"alternative":  RequirementAlternative,
		" conditional": RequirementConditional,
		"disabled":     0,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseRequirement(in), in)
	}

	assert.True(t, RequirementAlternative.Optional())
	assert.False(t, RequirementRequired.Optional())
}

func TestEnumsString(t *testing.T) {
	assert.Equal(t, "accepted", OutcomeAccepted.String())
	assert.Equal(t, "rejected_expired", OutcomeExpired.String())
	assert.Equal(t, "unknown", Outcome(0).String())
	assert.Equal(t, "non_interactive", ChannelNonInteractive.String())
	assert.Equal(t, "conditional", RequirementConditional.String())
}

func TestUser_MobileNumber(t *testing.T) {
	u := User{Realm: "Acme", Username: "bob", Attributes: valueobject.Attributes{AttributeMobileNumber: {"+15550001"}}}

	assert.Equal(t, "+15550001", u.MobileNumber())
	assert.True(t, u.ConfiguredForSMS())
	assert.Equal(t, "acme:bob", u.Identity().String())
	assert.False(t, User{}.ConfiguredForSMS())
}

func TestTransportError(t *testing.T) {
	cause := errors.New("throttled")
	err := error(&TransportError{ChallengeID: 7, Err: cause})

	var te *TransportError
	assert.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "challenge 7")
}

func TestChallenge_BoundTo(t *testing.T) {
	assert.True(t, Challenge{}.BoundTo("h1"))
	assert.True(t, Challenge{Session: "h1"}.BoundTo("h1"))
	assert.False(t, Challenge{Session: "h1"}.BoundTo("h2"))
}
