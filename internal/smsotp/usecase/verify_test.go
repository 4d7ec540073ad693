package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

func TestVerifyCode(t *testing.T) {
	type step struct {
		advance time.Duration
		code    string
		want    entity.Outcome
	}

	tests := []struct {
		name          string
		requirement   entity.Requirement
		zeroRetention bool
		issue         bool
		steps         []step
	}{
		{
			name:  "accepted once",
			issue: true,
			steps: []step{
				{advance: 100 * time.Second, code: codeFirst, want: entity.OutcomeAccepted},
				{code: codeFirst, want: entity.OutcomeNoChallenge},
			},
		},
		{
			name:  "no challenge",
			steps: []step{{code: codeFirst, want: entity.OutcomeNoChallenge}},
		},
		{
			name:  "mismatch keeps challenge when required",
			issue: true,
			steps: []step{
				{code: "000000", want: entity.OutcomeMismatch},
				{code: "", want: entity.OutcomeMismatch},
				{code: codeFirst, want: entity.OutcomeAccepted},
			},
		},
		{
			name:        "mismatch discards challenge when alternative",
			requirement: entity.RequirementAlternative,
			issue:       true,
			steps: []step{
				{code: "000000", want: entity.OutcomeMismatch},
				{code: codeFirst, want: entity.OutcomeNoChallenge},
			},
		},
		{
			name:  "accepted exactly at expiry",
			issue: true,
			steps: []step{{advance: 300 * time.Second, code: codeFirst, want: entity.OutcomeAccepted}},
		},
		{
			name:  "expired then removed",
			issue: true,
			steps: []step{
				{advance: 301 * time.Second, code: codeFirst, want: entity.OutcomeExpired},
				{code: codeFirst, want: entity.OutcomeNoChallenge},
			},
		},
		{
			name:  "wrong code after expiry is a mismatch",
			issue: true,
			steps: []step{
				{advance: 400 * time.Second, code: "000000", want: entity.OutcomeMismatch},
				{code: codeFirst, want: entity.OutcomeExpired},
			},
		},
		{
			name:  "past retention nothing is left",
			issue: true,
			steps: []step{{advance: 601 * time.Second, code: codeFirst, want: entity.OutcomeNoChallenge}},
		},
		{
			name:          "zero retention accepted exactly at expiry",
			zeroRetention: true,
			issue:         true,
			steps:         []step{{advance: 300 * time.Second, code: codeFirst, want: entity.OutcomeAccepted}},
		},
		{
			name:          "zero retention late code is expired",
			zeroRetention: true,
			issue:         true,
			steps: []step{
				{advance: 300*time.Second + 500*time.Millisecond, code: codeFirst, want: entity.OutcomeExpired},
				{code: codeFirst, want: entity.OutcomeNoChallenge},
			},
		},
		{
			name:          "zero retention keeps the entry one second",
			zeroRetention: true,
			issue:         true,
			steps:         []step{{advance: 301 * time.Second, code: codeFirst, want: entity.OutcomeNoChallenge}},
		},
		{
			name:  "surrounding spaces ignored",
			issue: true,
			steps: []step{{code: " " + codeFirst + " ", want: entity.OutcomeAccepted}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t, func(s *Settings) {
				if tt.requirement != 0 {
					s.Requirement = tt.requirement
				}
				if tt.zeroRetention {
					s.Retention = 0
				}
			})
			if tt.issue {
				h.issue(t, "")
			}

			for i, st := range tt.steps {
				// Act
				h.clk.Advance(st.advance)
				got := h.verify(t, "", st.code)

				// Assert
				assert.Equal(t, st.want, got, "step %d", i)
			}
		})
	}
}

func TestVerifyCode_SupersededSessionChallenge(t *testing.T) {
	// Arrange
	h := newHarness(t)
	first := h.issue(t, "h1")
	require.Equal(t, codeFirst, first.Challenge.Code)

	// Act
	h.clk.Advance(100 * time.Second)
	accepted := h.verify(t, "h1", codeFirst)

	second := h.issue(t, "h2")

	h.clk.Advance(300 * time.Second)
	replayed := h.verify(t, "h1", codeFirst)

	// Assert
	assert.Equal(t, entity.OutcomeAccepted, accepted)
	assert.Equal(t, codeSecond, second.Challenge.Code)
	assert.Equal(t, entity.OutcomeNoChallenge, replayed)
	assert.Equal(t, entity.OutcomeAccepted, h.verify(t, "h2", codeSecond), "new challenge untouched")
}

func TestVerifyCode_SessionCopyDroppedWhenSuperseded(t *testing.T) {
	// Arrange
	h := newHarness(t)
	h.issue(t, "h1")
	h.issue(t, "")

	// Act
	stale := h.verify(t, "h1", codeFirst)
	current := h.verify(t, "", codeSecond)

	// Assert
	assert.Equal(t, entity.OutcomeNoChallenge, stale)
	assert.Equal(t, entity.OutcomeAccepted, current)
}

func TestVerifyCode_SessionCopyDroppedWhenConsumedElsewhere(t *testing.T) {
	// Arrange
	h := newHarness(t)
	h.issue(t, "h1")
	require.Equal(t, entity.OutcomeAccepted, h.verify(t, "", codeFirst))

	// Act
	got := h.verify(t, "h1", codeFirst)

	// Assert
	assert.Equal(t, entity.OutcomeNoChallenge, got)
}

func TestVerifyCode_ConcurrentSubmissions(t *testing.T) {
	// Arrange
	h := newHarness(t)
	h.issue(t, "")

	var accepted, rejected atomic.Int32
	var wg sync.WaitGroup

	// Act
	for range 32 {
		wg.Go(func() {
			outcome, err := h.uc.VerifyCode(context.Background(), VerifyInput{
				Identity: alice,
				Code:     codeFirst,
				Channel:  entity.ChannelNonInteractive,
			})
			if err != nil {
				return
			}
			if outcome == entity.OutcomeAccepted {
				accepted.Add(1)
			} else {
				rejected.Add(1)
			}
		})
	}
	wg.Wait()

	// Assert
	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(31), rejected.Load())
}

func TestVerifyCode_PublishesEvents(t *testing.T) {
	h := newHarness(t)
	out := h.issue(t, "")

	h.verify(t, "", "000000")
	h.verify(t, "", codeFirst)

	events := h.drain(t)
	require.Len(t, events.verified, 2)

	outcomes := []entity.Outcome{events.verified[0].Outcome, events.verified[1].Outcome}
	assert.ElementsMatch(t, []entity.Outcome{entity.OutcomeMismatch, entity.OutcomeAccepted}, outcomes)
	for _, ev := range events.verified {
		assert.Equal(t, out.Challenge.ID, ev.ChallengeID)
		assert.Equal(t, h.keyer.Key("acme:alice"), ev.Identity)
		assert.Equal(t, t0, ev.VerifiedAt)
	}
}
