package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
	"github.com/shandysiswandi/smsotp/internal/shared/event"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
	"github.com/shandysiswandi/smsotp/internal/smsotp/usecase"
)

type published struct {
	destination string
	msg         messaging.OutgoingMessage
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	if f.err != nil {
		return messaging.PublishResult{}, f.err
	}
	f.sent = append(f.sent, published{destination: destination, msg: msg})
	return messaging.PublishResult{}, nil
}

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMessaging_PublishChallengeIssued(t *testing.T) {
	// Arrange
	pub := &fakePublisher{}
	m := NewMessaging(pub, instrument.NewNoop())
	ctx := instrument.SetCorrelationID(context.Background(), "cid-1")

	// Act
	err := m.PublishChallengeIssued(ctx, usecase.ChallengeIssuedEvent{
		ChallengeID: 42,
		Identity:    "f00d",
		Realm:       "acme",
		Channel:     entity.ChannelInteractive,
		Simulated:   true,
		IssuedAt:    at,
		ExpiresAt:   at.Add(5 * time.Minute),
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, pub.sent, 1)
	got := pub.sent[0]
	assert.Equal(t, event.ChallengeIssuedDestination, got.destination)
	assert.Equal(t, []byte("f00d"), got.msg.Key)
	assert.Equal(t, "cid-1", messaging.HeaderValue(got.msg.Headers, keyOfCorrelationID))

	var body event.ChallengeIssuedMessage
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, event.ChallengeIssuedMessage{
		ChallengeID: 42,
		Identity:    "f00d",
		Realm:       "acme",
		Channel:     "interactive",
		Simulated:   true,
		IssuedAt:    at.Unix(),
		ExpiresAt:   at.Add(5 * time.Minute).Unix(),
	}, body)
	assert.Contains(t, string(got.msg.Body), `"challenge_id":"42"`)
}

func TestMessaging_PublishChallengeVerified(t *testing.T) {
	pub := &fakePublisher{}
	m := NewMessaging(pub, instrument.NewNoop())

	err := m.PublishChallengeVerified(context.Background(), usecase.ChallengeVerifiedEvent{
		Identity:   "f00d",
		Realm:      "acme",
		Channel:    entity.ChannelNonInteractive,
		Outcome:    entity.OutcomeNoChallenge,
		VerifiedAt: at,
	})

	require.NoError(t, err)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, event.ChallengeVerifiedDestination, pub.sent[0].destination)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.sent[0].msg.Body, &body))
	assert.Equal(t, "rejected_no_challenge", body["outcome"])
	assert.Equal(t, "non_interactive", body["channel"])
	assert.NotContains(t, body, "challenge_id")
}

func TestMessaging_PublishError(t *testing.T) {
	errBroker := errors.New("broker down")
	m := NewMessaging(&fakePublisher{err: errBroker}, instrument.NewNoop())

	err := m.PublishChallengeVerified(context.Background(), usecase.ChallengeVerifiedEvent{Outcome: entity.OutcomeAccepted})

	assert.ErrorIs(t, err, errBroker)
}
