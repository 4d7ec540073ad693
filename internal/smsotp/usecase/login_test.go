package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

func login(t *testing.T, h *harness) *LoginOutput {
	t.Helper()

	out, err := h.uc.Login(context.Background(), LoginInput{Realm: "acme", Username: "alice", Password: testPassword})
	require.NoError(t, err)
	require.NotNil(t, out.Issued)
	return out
}

func TestLogin_ThenSubmitCode(t *testing.T) {
	// Arrange
	h := newHarness(t)
	ctx := context.Background()
	out := login(t, h)

	// Act
	h.clk.Advance(time.Minute)
	res, err := h.uc.SubmitCode(ctx, SubmitCodeInput{Realm: "acme", SessionHandle: out.Session.Handle, Code: codeFirst})
	require.NoError(t, err)

	again, err := h.uc.SubmitCode(ctx, SubmitCodeInput{Realm: "acme", SessionHandle: out.Session.Handle, Code: codeFirst})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "handle-1", out.Session.Handle)
	assert.Equal(t, int64(1), out.Session.UserID)
	assert.Equal(t, t0.Add(30*time.Minute), out.Session.ExpiresAt)
	assert.Equal(t, h.keyer.Key("handle-1"), out.Issued.Challenge.Session)

	assert.Equal(t, entity.OutcomeAccepted, res.Outcome)
	require.NotNil(t, res.Token)
	claims, err := h.jwt.Verify(res.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"pwd", "sms"}, claims.AMR)

	assert.Equal(t, entity.OutcomeNoChallenge, again.Outcome)
	_, err = h.sessions.Get(ctx, out.Session.Handle)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestSubmitCode(t *testing.T) {
	tests := []struct {
		name          string
		requirement   entity.Requirement
		advance       time.Duration
		code          string
		realm         string
		want          entity.Outcome
		wantRetry     bool
		wantSessionOK bool
	}{
		{
			name:          "mismatch keeps session when required",
			code:          "000000",
			want:          entity.OutcomeMismatch,
			wantRetry:     true,
			wantSessionOK: true,
		},
		{
			name:        "mismatch closes session when alternative",
			requirement: entity.RequirementAlternative,
			code:        "000000",
			want:        entity.OutcomeMismatch,
		},
		{
			name:    "expired closes session",
			advance: 301 * time.Second,
			code:    codeFirst,
			want:    entity.OutcomeExpired,
		},
		{
			name:          "other realm",
			code:          codeFirst,
			realm:         "globex",
			want:          entity.OutcomeNoChallenge,
			wantSessionOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t, func(s *Settings) {
				if tt.requirement != 0 {
					s.Requirement = tt.requirement
				}
			})
			out := login(t, h)
			realm := "acme"
			if tt.realm != "" {
				realm = tt.realm
			}

			// Act
			h.clk.Advance(tt.advance)
			res, err := h.uc.SubmitCode(context.Background(), SubmitCodeInput{
				Realm:         realm,
				SessionHandle: out.Session.Handle,
				Code:          tt.code,
			})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Equal(t, tt.wantRetry, res.Retry)
			assert.Nil(t, res.Token)

			_, err = h.sessions.Get(context.Background(), out.Session.Handle)
			if tt.wantSessionOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, goerror.ErrNotFound)
			}
		})
	}
}

func TestSubmitCode_RetryAfterMismatch(t *testing.T) {
	h := newHarness(t)
	out := login(t, h)
	in := SubmitCodeInput{Realm: "acme", SessionHandle: out.Session.Handle, Code: "111111"}

	res, err := h.uc.SubmitCode(context.Background(), in)
	require.NoError(t, err)
	require.True(t, res.Retry)

	in.Code = codeFirst
	res, err = h.uc.SubmitCode(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeAccepted, res.Outcome)
}

func TestSubmitCode_UnknownSession(t *testing.T) {
	h := newHarness(t)

	for _, handle := range []string{"", "never-issued"} {
		res, err := h.uc.SubmitCode(context.Background(), SubmitCodeInput{Realm: "acme", SessionHandle: handle, Code: codeFirst})

		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeNoChallenge, res.Outcome)
	}
}

func TestLogin_NewLoginSupersedesOldSession(t *testing.T) {
	h := newHarness(t)
	first := login(t, h)
	second := login(t, h)

	old, err := h.uc.SubmitCode(context.Background(), SubmitCodeInput{Realm: "acme", SessionHandle: first.Session.Handle, Code: codeFirst})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeNoChallenge, old.Outcome)

	cur, err := h.uc.SubmitCode(context.Background(), SubmitCodeInput{Realm: "acme", SessionHandle: second.Session.Handle, Code: codeSecond})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeAccepted, cur.Outcome)
}

func TestLogin_TransportFailureClosesSession(t *testing.T) {
	h := newHarness(t)
	h.sender.err = errors.New("provider down")

	_, err := h.uc.Login(context.Background(), LoginInput{Realm: "acme", Username: "alice", Password: testPassword})

	var terr *entity.TransportError
	require.ErrorAs(t, err, &terr)
	_, err = h.sessions.Get(context.Background(), "handle-1")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestLogin_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.Login(context.Background(), LoginInput{Realm: "acme", Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = h.uc.Login(context.Background(), LoginInput{Realm: "acme", Username: "bob", Password: testPassword})
	assert.ErrorIs(t, err, entity.ErrNotConfigured)
}

func TestLogin_OptionalFactorSkipped(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.Requirement = entity.RequirementAlternative })

	out, err := h.uc.Login(context.Background(), LoginInput{Realm: "acme", Username: "bob", Password: testPassword})

	require.NoError(t, err)
	assert.Nil(t, out.Issued)
	require.NotNil(t, out.Token)
	assert.Empty(t, out.Session.Handle)
}
