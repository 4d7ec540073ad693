package inbound

import (
	"context"

	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
	"github.com/shandysiswandi/smsotp/internal/smsotp/usecase"
)

type ucConsumer interface {
	DispatchSMS(ctx context.Context, msg sms.Message) error
}

type uc interface {
	Token(ctx context.Context, in usecase.TokenInput) (*usecase.TokenOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	SubmitCode(ctx context.Context, in usecase.SubmitCodeInput) (*usecase.SubmitCodeOutput, error)
}
