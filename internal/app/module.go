package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/smsotp/internal/smsotp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.smsotp.enabled") {
		if err := smsotp.New(smsotp.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			KVStore:    a.kv,
			Messaging:  a.messaging,
			Sender:     a.sender,
			Dispatcher: a.dispatcher,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Handle:     a.handle,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
			Texts:      a.texts,
			OTP:        a.otp,
			Password:   a.password,
			HMAC:       a.hmac,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module smsotp", "error", err)
			os.Exit(1)
		}
	}
}
