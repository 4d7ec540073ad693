package smsotp

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
	"github.com/shandysiswandi/smsotp/internal/pkg/config"
	"github.com/shandysiswandi/smsotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/smsotp/internal/pkg/hash"
	"github.com/shandysiswandi/smsotp/internal/pkg/i18n"
	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/smsotp/internal/pkg/messaging"
	"github.com/shandysiswandi/smsotp/internal/pkg/otp"
	"github.com/shandysiswandi/smsotp/internal/pkg/router"
	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
	"github.com/shandysiswandi/smsotp/internal/pkg/uid"
	"github.com/shandysiswandi/smsotp/internal/pkg/validator"
	"github.com/shandysiswandi/smsotp/internal/smsotp/inbound"
	"github.com/shandysiswandi/smsotp/internal/smsotp/outbound/db"
	"github.com/shandysiswandi/smsotp/internal/smsotp/outbound/mq"
	"github.com/shandysiswandi/smsotp/internal/smsotp/outbound/store"
	"github.com/shandysiswandi/smsotp/internal/smsotp/usecase"
)

type Dependency struct {
	// Ctx bounds the consumer and sweeper goroutines. Nil skips both.
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	KVStore    kvstore.Store              `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Sender     sms.Sender                 `validate:"required"`
	Dispatcher sms.Sender                 `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Handle     uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Texts      *i18n.Translator           `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	HMAC       *hash.HMACSHA256           `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	settings, err := usecase.NewSettings(dep.Config, dep.Validator)
	if err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	if dep.Ctx != nil && dep.Config.GetBool("database.auto_migrate") {
		if err := dbAuth.Migrate(dep.Ctx); err != nil {
			return err
		}
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	challenges := store.NewChallenges(dep.KVStore, dep.HMAC, settings.Retention, dep.Instrument)
	sessions := store.NewSessions(dep.KVStore, dep.HMAC, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		Settings:           settings,
		RepoDB:             dbAuth,
		RepoMessaging:      repoMsg,
		SessionChallenges:  challenges.Session(),
		IdentityChallenges: challenges.Identity(),
		Sessions:           sessions,
		Sweeper:            challenges,
		Sender:             dep.Sender,
		Dispatcher:         dep.Dispatcher,
		Texts:              dep.Texts,
		OTP:                dep.OTP,
		Password:           dep.Password,
		Keyer:              dep.HMAC,
		Validator:          dep.Validator,
		UID:                dep.UID,
		Handle:             dep.Handle,
		Clock:              dep.Clock,
		JWT:                dep.JWT,
		Instrument:         dep.Instrument,
		Goroutine:          dep.Goroutine,
	})

	shaper, err := inbound.NewShaper(inbound.ShaperConfig{
		Texts:             dep.Texts,
		SuccessURL:        settings.SuccessURL,
		SecureCookie:      dep.Config.GetBool("modules.smsotp.interactive.secure_cookie"),
		SessionTTLSeconds: int(settings.SessionTTL.Seconds()),
	})
	if err != nil {
		return err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, shaper, dep.JWT)

	if dep.Ctx == nil {
		return nil
	}

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	interval := dep.Config.GetSecond("modules.smsotp.store.sweep_interval_seconds")
	if interval > 0 {
		dep.Goroutine.Every(dep.Ctx, "smsotp.sweep", interval, func(ctx context.Context) error {
			n, err := uc.SweepExpired(ctx)
			if n > 0 {
				slog.InfoContext(ctx, "expired challenges swept", "count", n)
			}
			return err
		})
	}

	return nil
}
