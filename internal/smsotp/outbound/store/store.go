package store

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
)

const (
	prefixSessionChallenge  = "smsotp:challenge:session:"
	prefixIdentityChallenge = "smsotp:challenge:identity:"
	prefixAuthSession       = "smsotp:session:"
)

// keyer turns a raw handle or identity into the stored key, so that neither
// usernames nor cookie values appear in a shared cache.
type keyer interface {
	Key(str string) string
}

type tracer struct {
	ins instrument.Instrumentation
}

func (t tracer) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.ins.Tracer("smsotp.outbound.store").Start(ctx, name)
}

func (t tracer) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func mapError(err error) error {
	if errors.Is(err, kvstore.ErrNotFound) {
		return goerror.ErrNotFound
	}
	return err
}
