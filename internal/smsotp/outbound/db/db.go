package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

// Schema creates the user directory read by the credential step.
const Schema = `
CREATE TABLE IF NOT EXISTS smsotp_users (
	id            BIGINT PRIMARY KEY,
	realm         TEXT NOT NULL,
	username      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	attributes    JSONB NOT NULL DEFAULT '{}'::jsonb,
	enabled       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (realm, username)
)`

const queryUserByUsername = `
SELECT id, realm, username, password_hash, attributes, enabled
FROM smsotp_users
WHERE realm = $1 AND username = $2`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type DB struct {
	conn querier
	ins  instrument.Instrumentation
}

// NewDB accepts a *pgxpool.Pool or anything with the same query methods.
func NewDB(conn querier, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("smsotp.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Migrate creates the tables this module reads.
func (s *DB) Migrate(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Migrate")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, Schema)
	return err
}

func (s *DB) GetUserByUsername(ctx context.Context, key entity.IdentityKey) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, queryUserByUsername, key.Realm, key.Username).Scan(
		&u.ID,
		&u.Realm,
		&u.Username,
		&u.PasswordHash,
		&u.Attributes,
		&u.Enabled,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}
