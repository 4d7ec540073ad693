package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
	"github.com/shandysiswandi/smsotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/smsotp/internal/pkg/hash"
	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/pkg/otp"
	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
	"github.com/shandysiswandi/smsotp/internal/pkg/uid"
	"github.com/shandysiswandi/smsotp/internal/pkg/validator"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

type ChallengeIssuedEvent struct {
	ChallengeID int64
	Identity    string
	Realm       string
	Channel     entity.Channel
	Simulated   bool
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type ChallengeVerifiedEvent struct {
	ChallengeID int64
	Identity    string
	Realm       string
	Channel     entity.Channel
	Outcome     entity.Outcome
	VerifiedAt  time.Time
}

type repoMessaging interface {
	PublishChallengeIssued(ctx context.Context, msg ChallengeIssuedEvent) error
	PublishChallengeVerified(ctx context.Context, msg ChallengeVerifiedEvent) error
}

type repoDB interface {
	GetUserByUsername(ctx context.Context, key entity.IdentityKey) (*entity.User, error)
}

// challengeView is one addressing scheme of the challenge store. Get returns
// goerror.ErrNotFound for a missing key.
type challengeView interface {
	Put(ctx context.Context, key string, ch entity.Challenge) error
	Get(ctx context.Context, key string) (entity.Challenge, error)
	Remove(ctx context.Context, key string) error
	Consume(ctx context.Context, key string, id int64) (bool, error)
}

type sessionStore interface {
	Create(ctx context.Context, as entity.AuthSession) error
	Get(ctx context.Context, handle string) (entity.AuthSession, error)
	Delete(ctx context.Context, handle string) error
}

type sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type translator interface {
	T(acceptLanguage, id string, data map[string]any) string
}

type keyer interface {
	Key(str string) string
}

type Usecase struct {
	settings           Settings
	repoDB             repoDB
	repoMessaging      repoMessaging
	sessionChallenges  challengeView
	identityChallenges challengeView
	sessions           sessionStore
	sweeper            sweeper
	sender             sms.Sender
	simulator          sms.Sender
	dispatcher         sms.Sender
	texts              translator
	otp                otp.Generator
	password           hash.Hash
	keyer              keyer
	validator          validator.Validator
	uid                uid.NumberID
	handle             uid.StringID
	clock              clock.Clocker
	jwt                jwt.JWT
	ins                instrument.Instrumentation
	goroutine          *goroutine.Manager
	metrics            metrics
}

type Dependency struct {
	Settings           Settings
	RepoDB             repoDB
	RepoMessaging      repoMessaging
	SessionChallenges  challengeView
	IdentityChallenges challengeView
	Sessions           sessionStore
	Sweeper            sweeper
	// Sender delivers codes outside simulation mode.
	Sender sms.Sender
	// Dispatcher delivers messages relayed through the broker.
	Dispatcher sms.Sender
	Texts      translator
	OTP        otp.Generator
	Password   hash.Hash
	Keyer      keyer
	Validator  validator.Validator
	UID        uid.NumberID
	Handle     uid.StringID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		settings:           dep.Settings,
		repoDB:             dep.RepoDB,
		repoMessaging:      dep.RepoMessaging,
		sessionChallenges:  dep.SessionChallenges,
		identityChallenges: dep.IdentityChallenges,
		sessions:           dep.Sessions,
		sweeper:            dep.Sweeper,
		sender:             dep.Sender,
		simulator:          sms.NewLog(),
		dispatcher:         dep.Dispatcher,
		texts:              dep.Texts,
		otp:                dep.OTP,
		password:           dep.Password,
		keyer:              dep.Keyer,
		validator:          dep.Validator,
		uid:                dep.UID,
		handle:             dep.Handle,
		clock:              dep.Clock,
		jwt:                dep.JWT,
		ins:                dep.Instrument,
		goroutine:          dep.Goroutine,
		metrics:            newMetrics(dep.Instrument),
	}
}

// Settings returns the validated module settings.
func (s *Usecase) Settings() Settings {
	return s.settings
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("smsotp.usecase").Start(ctx, name)
}

// publish runs f on the goroutine manager detached from the request.
// Failures are logged only.
func (s *Usecase) publish(ctx context.Context, name string, f func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	if s.repoMessaging == nil {
		return
	}

	ok := s.goroutine.Go(ctx, func(ctx context.Context) error {
		if err := f(ctx); err != nil {
			slog.WarnContext(ctx, "failed to publish event", "event", name, "error", err)
		}
		return nil
	})
	if !ok {
		slog.WarnContext(ctx, "event dropped, no goroutine available", "event", name)
	}
}

type metrics struct {
	issued            metric.Int64Counter
	verifications     metric.Int64Counter
	transportFailures metric.Int64Counter
}

func newMetrics(ins instrument.Instrumentation) metrics {
	meter := ins.Meter("smsotp.usecase")

	var m metrics
	var err error

	if m.issued, err = meter.Int64Counter("smsotp.challenges.issued", metric.WithDescription("Challenges issued")); err != nil {
		slog.Error("failed to create issued counter", "error", err)
	}
	if m.verifications, err = meter.Int64Counter("smsotp.verifications", metric.WithDescription("Code verifications by outcome")); err != nil {
		slog.Error("failed to create verifications counter", "error", err)
	}
	if m.transportFailures, err = meter.Int64Counter("smsotp.transport.failures", metric.WithDescription("SMS sends that failed")); err != nil {
		slog.Error("failed to create transport failures counter", "error", err)
	}

	return m
}

func add(ctx context.Context, c metric.Int64Counter, opts ...metric.AddOption) {
	if c != nil {
		c.Add(ctx, 1, opts...)
	}
}
