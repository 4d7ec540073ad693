package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

const (
	methodPassword = "pwd"
	methodSMS      = "sms"
)

type credentials struct {
	Realm    string `validate:"required,realm"`
	Username string `validate:"required,max=255"`
	Password string `validate:"required,max=1024"`
}

// checkCredentials resolves the user and verifies the password. Unknown users
// and wrong passwords produce the same error.
func (s *Usecase) checkCredentials(ctx context.Context, key entity.IdentityKey, password string) (*entity.User, error) {
	if err := s.validator.Validate(credentials{Realm: key.Realm, Username: key.Username, Password: password}); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByUsername(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "realm", key.Realm)
		return nil, errInvalidCredentials()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "realm", key.Realm, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.password.Verify(user.PasswordHash, password) {
		slog.WarnContext(ctx, "password does not match", "user_id", user.ID)
		return nil, errInvalidCredentials()
	}

	if !user.Enabled {
		slog.WarnContext(ctx, "user account disabled", "user_id", user.ID)
		return nil, goerror.WithReason(
			goerror.WrapBusiness(entity.ErrAccountDisabled, "Account disabled", goerror.CodeUnauthorized),
			"invalid_grant",
		)
	}

	return user, nil
}

// skipFactor reports whether a user without a mobile number may continue
// without the SMS step.
func (s *Usecase) skipFactor(ctx context.Context, user *entity.User) (bool, error) {
	if user.ConfiguredForSMS() {
		return false, nil
	}
	if s.settings.Requirement.Optional() {
		slog.InfoContext(ctx, "sms factor skipped for user without mobile number", "user_id", user.ID)
		return true, nil
	}

	slog.WarnContext(ctx, "sms factor required but user has no mobile number", "user_id", user.ID)
	return false, errNotConfigured()
}

func (s *Usecase) issueToken(ctx context.Context, userID int64, key entity.IdentityKey, methods ...string) (*jwt.Token, error) {
	token, err := s.jwt.Generate(jwt.Subject{
		UserID:   userID,
		Realm:    key.Realm,
		Username: key.Username,
		Methods:  methods,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &token, nil
}

func errInvalidCredentials() error {
	return goerror.WithReason(
		goerror.WrapBusiness(entity.ErrInvalidCredentials, "Invalid user credentials", goerror.CodeUnauthorized),
		"invalid_grant",
	)
}
