package usecase

import (
	"context"

	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

type TokenInput struct {
	Realm    string
	Username string
	Password string
	OTP      string
	// HasOTP is true when the otp field was sent, even empty.
	HasOTP bool
	Lang   string
}

// TokenOutput holds exactly one of: an issued challenge, a token, or a
// rejected Outcome.
type TokenOutput struct {
	Issued  *IssueOutput
	Outcome entity.Outcome
	Token   *jwt.Token
}

// Token runs the stateless two-call exchange: credentials without a code
// issue a challenge, credentials with a code are checked against it.
func (s *Usecase) Token(ctx context.Context, in TokenInput) (*TokenOutput, error) {
	ctx, span := s.startSpan(ctx, "Token")
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
		return &TokenOutput{Outcome: entity.OutcomeAccepted, Token: token}, nil
	}

	if !in.HasOTP {
		issued, err := s.IssueChallenge(ctx, IssueInput{
			Identity:    key,
			Destination: user.MobileNumber(),
			Channel:     entity.ChannelNonInteractive,
			Lang:        in.Lang,
		})
		if err != nil {
			return nil, err
		}
		return &TokenOutput{Issued: issued}, nil
	}

	outcome, err := s.VerifyCode(ctx, VerifyInput{
		Identity: key,
		Code:     in.OTP,
		Channel:  entity.ChannelNonInteractive,
	})
	if err != nil {
		return nil, err
	}
	if outcome != entity.OutcomeAccepted {
		return &TokenOutput{Outcome: outcome}, nil
	}

	token, err := s.issueToken(ctx, user.ID, key, methodPassword, methodSMS)
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Outcome: entity.OutcomeAccepted, Token: token}, nil
}
