package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
)

// SweepExpired removes expired entries from the challenge store. It backs
// the optional periodic sweeper; puts already sweep on their own.
func (s *Usecase) SweepExpired(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "SweepExpired")
	defer span.End()

	return s.sweeper.Sweep(ctx)
}

// DispatchSMS delivers a message relayed through the broker.
func (s *Usecase) DispatchSMS(ctx context.Context, msg sms.Message) error {
	ctx, span := s.startSpan(ctx, "DispatchSMS")
	defer span.End()

	if s.settings.TransportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.TransportTimeout)
		defer cancel()
	}

	if err := s.dispatcher.Send(ctx, msg); err != nil {
		add(ctx, s.metrics.transportFailures)
		slog.ErrorContext(ctx, "failed to dispatch sms", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
