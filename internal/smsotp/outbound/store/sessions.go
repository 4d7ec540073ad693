package store

import (
	"context"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

// Sessions keeps interactive auth sessions until their ExpiresAt.
type Sessions struct {
	data   kvstore.JSON[entity.AuthSession]
	keyer  keyer
	tracer tracer
}

func NewSessions(kv kvstore.Store, k keyer, ins instrument.Instrumentation) *Sessions {
	return &Sessions{
		data:   kvstore.JSON[entity.AuthSession]{Underlying: kv, Prefix: prefixAuthSession},
		keyer:  k,
		tracer: tracer{ins: ins},
	}
}

func (s *Sessions) Create(ctx context.Context, as entity.AuthSession) (err error) {
	ctx, span := s.tracer.startSpan(ctx, "CreateSession")
	defer func() { s.tracer.endSpan(span, err) }()

	return s.data.Set(ctx, s.keyer.Key(as.Handle), as, as.ExpiresAt)
}

// Get returns the session for handle or goerror.ErrNotFound.
func (s *Sessions) Get(ctx context.Context, handle string) (_ entity.AuthSession, err error) {
	ctx, span := s.tracer.startSpan(ctx, "GetSession")
	defer func() { s.tracer.endSpan(span, err) }()

	as, err := s.data.Get(ctx, s.keyer.Key(handle))
	return as, mapError(err)
}

func (s *Sessions) Delete(ctx context.Context, handle string) (err error) {
	ctx, span := s.tracer.startSpan(ctx, "DeleteSession")
	defer func() { s.tracer.endSpan(span, err) }()

	return s.data.Delete(ctx, s.keyer.Key(handle))
}
