package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

type LoginInput struct {
	Realm    string
	Username string
	Password string
	Lang     string
}

// LoginOutput carries the new session and its challenge, or a token when the
// SMS step was skipped.
type LoginOutput struct {
	Session entity.AuthSession
	Issued  *IssueOutput
	Token   *jwt.Token
}

// Login is the interactive credential step. It opens an auth session and
// issues the first challenge bound to it.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	key := entity.NewIdentityKey(in.Realm, in.Username)

	user, err := s.checkCredentials(ctx, key, in.Password)
	if err != nil {
		return nil, err
	}

	skip, err := s.skipFactor(ctx, user)
	if err != nil {
		return nil, err
	}
	if skip {
		token, err := s.issueToken(ctx, user.ID, key, methodPassword)
		if err != nil {
			return nil, err
		}
		return &LoginOutput{Token: token}, nil
	}

	now := s.clock.Now()
	as := entity.AuthSession{
		Handle:    s.handle.Generate(),
		UserID:    user.ID,
		Realm:     key.Realm,
		Username:  key.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.settings.SessionTTL),
	}

	if err := s.sessions.Create(ctx, as); err != nil {
		slog.ErrorContext(ctx, "failed to create auth session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	issued, err := s.IssueChallenge(ctx, IssueInput{
		Identity:      key,
		Destination:   user.MobileNumber(),
		SessionHandle: as.Handle,
		Channel:       entity.ChannelInteractive,
		Lang:          in.Lang,
	})
	if err != nil {
		s.closeSession(ctx, as.Handle)
		return nil, err
	}

	return &LoginOutput{Session: as, Issued: issued}, nil
}

type SubmitCodeInput struct {
	Realm         string
	SessionHandle string
	Code          string
}

type SubmitCodeOutput struct {
	Outcome entity.Outcome
	Session entity.AuthSession
	Token   *jwt.Token
	// Retry is true when the same form may be submitted again.
	Retry bool
}

// SubmitCode is the interactive code step. Terminal outcomes close the auth
// session; a mismatch on a required factor keeps it for another attempt.
func (s *Usecase) SubmitCode(ctx context.Context, in SubmitCodeInput) (*SubmitCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "SubmitCode")
	defer span.End()

	if in.SessionHandle == "" {
		slog.WarnContext(ctx, "code submitted without auth session")
		return &SubmitCodeOutput{Outcome: entity.OutcomeNoChallenge}, nil
	}

	as, err := s.sessions.Get(ctx, in.SessionHandle)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "auth session not found or expired")
		return &SubmitCodeOutput{Outcome: entity.OutcomeNoChallenge}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load auth session", "error", err)
		return nil, goerror.NewServer(err)
	}

	if as.Realm != entity.NewIdentityKey(in.Realm, as.Username).Realm {
		slog.WarnContext(ctx, "auth session used on another realm", "session_realm", as.Realm)
		return &SubmitCodeOutput{Outcome: entity.OutcomeNoChallenge}, nil
	}

	outcome, err := s.VerifyCode(ctx, VerifyInput{
		Identity:      as.Identity(),
		SessionHandle: as.Handle,
		Code:          in.Code,
		Channel:       entity.ChannelInteractive,
	})
	if err != nil {
		return nil, err
	}

	out := &SubmitCodeOutput{Outcome: outcome, Session: as}

	if outcome == entity.OutcomeMismatch && !s.settings.Requirement.Optional() {
		out.Retry = true
		return out, nil
	}

	s.closeSession(ctx, as.Handle)

	if outcome == entity.OutcomeAccepted {
		if out.Token, err = s.issueToken(ctx, as.UserID, as.Identity(), methodPassword, methodSMS); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *Usecase) closeSession(ctx context.Context, handle string) {
	if err := s.sessions.Delete(context.WithoutCancel(ctx), handle); err != nil {
		slog.WarnContext(ctx, "failed to delete auth session", "error", err)
	}
}
