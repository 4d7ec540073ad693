package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
	"github.com/shandysiswandi/smsotp/internal/shared/event"
	"github.com/shandysiswandi/smsotp/internal/smsotp/usecase"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishChallengeIssued(ctx context.Context, msg usecase.ChallengeIssuedEvent) error {
	return m.publish(ctx, "PublishChallengeIssued", event.ChallengeIssuedDestination, msg.Identity, event.ChallengeIssuedMessage{
		ChallengeID: msg.ChallengeID,
		Identity:    msg.Identity,
		Realm:       msg.Realm,
		Channel:     msg.Channel.String(),
		Simulated:   msg.Simulated,
		IssuedAt:    msg.IssuedAt.Unix(),
		ExpiresAt:   msg.ExpiresAt.Unix(),
	})
}

func (m *Messaging) PublishChallengeVerified(ctx context.Context, msg usecase.ChallengeVerifiedEvent) error {
	return m.publish(ctx, "PublishChallengeVerified", event.ChallengeVerifiedDestination, msg.Identity, event.ChallengeVerifiedMessage{
		ChallengeID: msg.ChallengeID,
		Identity:    msg.Identity,
		Realm:       msg.Realm,
		Channel:     msg.Channel.String(),
		Outcome:     msg.Outcome.String(),
		VerifiedAt:  msg.VerifiedAt.Unix(),
	})
}

func (m *Messaging) publish(ctx context.Context, name, destination, key string, payload any) error {
	ctx, span := m.ins.Tracer("smsotp.outbound.mq").Start(ctx, name)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(key),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
