package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

type IssueInput struct {
	Identity    entity.IdentityKey
	Destination string
	// SessionHandle is set on the interactive channel only.
	SessionHandle string
	Channel       entity.Channel
	// Lang is the caller's Accept-Language, used for the SMS text.
	Lang string
}

type destination struct {
	Number string `validate:"required,phone"`
}

type IssueOutput struct {
	Challenge entity.Challenge
	ExpiresIn time.Duration
	// Simulated is true when no SMS was sent; the code may be shown to the caller.
	Simulated bool
}

// IssueChallenge creates a challenge for in.Identity, replacing any previous
// one, and sends the code. A failed send withdraws the challenge and returns
// *entity.TransportError.
func (s *Usecase) IssueChallenge(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "IssueChallenge")
	defer span.End()

	if in.Identity.IsZero() {
		return nil, goerror.NewInvalidFormat("Identity is required")
	}
	if in.Destination == "" {
		slog.WarnContext(ctx, "user has no mobile number", "realm", in.Identity.Realm)
		return nil, errNotConfigured()
	}
	if err := s.validator.Validate(destination{Number: in.Destination}); err != nil {
		slog.WarnContext(ctx, "user mobile number is not in E.164 format", "realm", in.Identity.Realm, "error", err)
		return nil, errNotConfigured()
	}

	code, err := s.otp.Generate(s.settings.CodeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ch := entity.Challenge{
		ID:        s.uid.Generate(),
		Identity:  in.Identity.String(),
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.settings.TTL),
	}
	if in.SessionHandle != "" {
		ch.Session = s.keyer.Key(in.SessionHandle)
	}

	if err := s.identityChallenges.Put(ctx, ch.Identity, ch); err != nil {
		slog.ErrorContext(ctx, "failed to store challenge", "challenge_id", ch.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if in.SessionHandle != "" {
		if err := s.sessionChallenges.Put(ctx, in.SessionHandle, ch); err != nil {
			slog.ErrorContext(ctx, "failed to store session challenge", "challenge_id", ch.ID, "error", err)
			s.withdraw(ctx, in, ch)
			return nil, goerror.NewServer(err)
		}
	}

	if err := s.deliver(ctx, in, ch); err != nil {
		s.withdraw(ctx, in, ch)

		span.RecordError(err)
		span.SetStatus(codes.Error, "sms send failed")
		add(ctx, s.metrics.transportFailures)
		slog.ErrorContext(ctx, "failed to send sms code", "challenge_id", ch.ID, "channel", in.Channel.String(), "error", err)

		return nil, &entity.TransportError{ChallengeID: ch.ID, Err: err}
	}

	add(ctx, s.metrics.issued, metric.WithAttributes(
		attribute.String("channel", in.Channel.String()),
		attribute.Bool("simulated", s.settings.Simulation),
	))
	slog.InfoContext(ctx, "otp challenge issued",
		"challenge_id", ch.ID,
		"realm", in.Identity.Realm,
		"channel", in.Channel.String(),
		"simulated", s.settings.Simulation,
	)

	s.publish(ctx, "challenge_issued", func(ctx context.Context) error {
		return s.repoMessaging.PublishChallengeIssued(ctx, ChallengeIssuedEvent{
			ChallengeID: ch.ID,
			Identity:    s.keyer.Key(ch.Identity),
			Realm:       in.Identity.Realm,
			Channel:     in.Channel,
			Simulated:   s.settings.Simulation,
			IssuedAt:    ch.IssuedAt,
			ExpiresAt:   ch.ExpiresAt,
		})
	})

	return &IssueOutput{
		Challenge: ch,
		ExpiresIn: s.settings.TTL,
		Simulated: s.settings.Simulation,
	}, nil
}

// deliver sends the code, or only logs it in simulation mode.
func (s *Usecase) deliver(ctx context.Context, in IssueInput, ch entity.Challenge) error {
	text := s.texts.T(in.Lang, "sms_auth_text", map[string]any{
		"Code":    ch.Code,
		"Minutes": s.settings.TTLMinutes(),
	})

	sender := s.sender
	if s.settings.Simulation {
		sender = s.simulator
	}

	if s.settings.TransportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.TransportTimeout)
		defer cancel()
	}

	return sender.Send(ctx, sms.Message{To: in.Destination, Text: text, SenderID: s.settings.SenderID})
}

// withdraw removes ch from both views unless a newer challenge replaced it.
func (s *Usecase) withdraw(ctx context.Context, in IssueInput, ch entity.Challenge) {
	ctx = context.WithoutCancel(ctx)

	if _, err := s.identityChallenges.Consume(ctx, ch.Identity, ch.ID); err != nil {
		slog.WarnContext(ctx, "failed to withdraw challenge", "challenge_id", ch.ID, "error", err)
	}
	if in.SessionHandle != "" {
		if err := s.sessionChallenges.Remove(ctx, in.SessionHandle); err != nil {
			slog.WarnContext(ctx, "failed to withdraw session challenge", "challenge_id", ch.ID, "error", err)
		}
	}
}

func errNotConfigured() error {
	return goerror.WithReason(
		goerror.WrapBusiness(entity.ErrNotConfigured, "SMS authentication is not configured for this user", goerror.CodeInvalidFormat),
		"invalid_request",
	)
}
