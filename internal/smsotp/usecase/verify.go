package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

type VerifyInput struct {
	Identity entity.IdentityKey
	// SessionHandle is looked up before the identity view when set.
	SessionHandle string
	Code          string
	Channel       entity.Channel
}

// VerifyCode checks a submitted code against the stored challenge.
//
// The code is compared before expiry: a wrong code is a mismatch even after
// the deadline and leaves the challenge in place (unless the factor is
// optional). A correct code past the deadline removes the challenge. A
// correct code in time consumes it, so it is accepted once.
//
// The returned error is for infrastructure failures only; every rejection is
// an Outcome.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyInput) (entity.Outcome, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	ch, found, err := s.lookup(ctx, in)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load challenge", "channel", in.Channel.String(), "error", err)
		return 0, goerror.NewServer(err)
	}
	if !found {
		return s.verified(ctx, in, ch, entity.OutcomeNoChallenge), nil
	}

	if !ch.Matches(strings.TrimSpace(in.Code)) {
		if s.settings.Requirement.Optional() {
			s.discard(ctx, in, ch)
		}
		return s.verified(ctx, in, ch, entity.OutcomeMismatch), nil
	}

	if ch.Expired(s.clock.Now()) {
		s.discard(ctx, in, ch)
		return s.verified(ctx, in, ch, entity.OutcomeExpired), nil
	}

	consumed, err := s.identityChallenges.Consume(ctx, ch.Identity, ch.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume challenge", "challenge_id", ch.ID, "error", err)
		return 0, goerror.NewServer(err)
	}
	s.removeSessionCopy(ctx, in.SessionHandle)

	if !consumed {
		// a concurrent submission or a new challenge got there first
		return s.verified(ctx, in, ch, entity.OutcomeNoChallenge), nil
	}

	return s.verified(ctx, in, ch, entity.OutcomeAccepted), nil
}

// lookup tries the session view, then the identity view. A session copy that
// is no longer the identity's current challenge was superseded or consumed
// through the other channel; it is dropped and reported as absent. The same
// holds for an identity entry issued to a different session.
func (s *Usecase) lookup(ctx context.Context, in VerifyInput) (entity.Challenge, bool, error) {
	identity := in.Identity.String()

	if in.SessionHandle != "" {
		ch, err := s.sessionChallenges.Get(ctx, in.SessionHandle)
		switch {
		case err == nil:
			current, err := s.identityChallenges.Get(ctx, identity)
			if err != nil && !errors.Is(err, goerror.ErrNotFound) {
				return entity.Challenge{}, false, err
			}
			if err != nil || current.ID != ch.ID || ch.Identity != identity {
				slog.InfoContext(ctx, "session challenge superseded", "challenge_id", ch.ID)
				s.removeSessionCopy(ctx, in.SessionHandle)
				return entity.Challenge{}, false, nil
			}
			return ch, true, nil
		case !errors.Is(err, goerror.ErrNotFound):
			return entity.Challenge{}, false, err
		}
	}

	ch, err := s.identityChallenges.Get(ctx, identity)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.Challenge{}, false, nil
	}
	if err != nil {
		return entity.Challenge{}, false, err
	}
	if in.SessionHandle != "" && !ch.BoundTo(s.keyer.Key(in.SessionHandle)) {
		slog.InfoContext(ctx, "identity challenge belongs to another session", "challenge_id", ch.ID)
		return entity.Challenge{}, false, nil
	}

	return ch, true, nil
}

// discard removes ch from both views. Failures leave an entry that expires
// on its own, so they are only logged.
func (s *Usecase) discard(ctx context.Context, in VerifyInput, ch entity.Challenge) {
	if _, err := s.identityChallenges.Consume(ctx, ch.Identity, ch.ID); err != nil {
		slog.WarnContext(ctx, "failed to discard challenge", "challenge_id", ch.ID, "error", err)
	}
	s.removeSessionCopy(ctx, in.SessionHandle)
}

func (s *Usecase) removeSessionCopy(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := s.sessionChallenges.Remove(ctx, handle); err != nil {
		slog.WarnContext(ctx, "failed to remove session challenge", "error", err)
	}
}

func (s *Usecase) verified(ctx context.Context, in VerifyInput, ch entity.Challenge, outcome entity.Outcome) entity.Outcome {
	add(ctx, s.metrics.verifications, metric.WithAttributes(
		attribute.String("outcome", outcome.String()),
		attribute.String("channel", in.Channel.String()),
	))

	if outcome == entity.OutcomeAccepted {
		slog.InfoContext(ctx, "otp verified", "challenge_id", ch.ID, "channel", in.Channel.String())
	} else {
		slog.WarnContext(ctx, "otp rejected", "challenge_id", ch.ID, "channel", in.Channel.String(), "outcome", outcome.String())
	}

	now := s.clock.Now()
	identity := s.keyer.Key(in.Identity.String())
	s.publish(ctx, "challenge_verified", func(ctx context.Context) error {
		return s.repoMessaging.PublishChallengeVerified(ctx, ChallengeVerifiedEvent{
			ChallengeID: ch.ID,
			Identity:    identity,
			Realm:       in.Identity.Realm,
			Channel:     in.Channel,
			Outcome:     outcome,
			VerifiedAt:  now,
		})
	})

	return outcome
}
