package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/shandysiswandi/smsotp/internal/pkg/config"
	"github.com/shandysiswandi/smsotp/internal/pkg/validator"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

const (
	defaultCodeLength       = 6
	defaultTTLSeconds       = 300
	defaultSessionTTL       = 1800
	defaultRetention        = 300
	defaultTransportTimeout = 10
)

// Settings are read once at startup.
type Settings struct {
	CodeLength  int
	TTL         time.Duration
	SenderID    string
	Simulation  bool
	Requirement entity.Requirement
	// SessionTTL bounds an interactive attempt; never shorter than TTL.
	SessionTTL time.Duration
	// Retention keeps expired challenges readable so a late code is
	// reported as expired. The store never keeps less than one second.
	Retention        time.Duration
	TransportTimeout time.Duration
	SuccessURL       string
}

type settingsInput struct {
	CodeLength              int    `validate:"min=1,max=12"`
	TTLSeconds              int    `validate:"min=1"`
	SenderID                string `validate:"max=11"`
	Requirement             string `validate:"omitempty,oneof=required alternative conditional"`
	SessionTTLSeconds       int    `validate:"min=0"`
	RetentionSeconds        int    `validate:"min=0"`
	TransportTimeoutSeconds int    `validate:"min=0"`
	SuccessURL              string `validate:"omitempty,uri"`
}

// NewSettings reads modules.smsotp.* and rejects unusable values with
// entity.ErrInvalidConfiguration.
func NewSettings(cfg config.Config, v validator.Validator) (Settings, error) {
	const prefix = "modules.smsotp."

	intOr := func(key string, def int) int {
		if !cfg.IsSet(prefix + key) {
			return def
		}
		return cfg.GetInt(prefix + key)
	}

	in := settingsInput{
		CodeLength:              intOr("code_length", defaultCodeLength),
		TTLSeconds:              intOr("ttl_seconds", defaultTTLSeconds),
		SenderID:                cfg.GetString(prefix + "sender_id"),
		Requirement:             strings.ToLower(strings.TrimSpace(cfg.GetString(prefix + "requirement"))),
		SessionTTLSeconds:       intOr("session.ttl_seconds", defaultSessionTTL),
		RetentionSeconds:        intOr("store.retention_seconds", defaultRetention),
		TransportTimeoutSeconds: intOr("transport.timeout_seconds", defaultTransportTimeout),
		SuccessURL:              cfg.GetString(prefix + "interactive.success_url"),
	}

	if err := v.Validate(in); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", entity.ErrInvalidConfiguration, err)
	}

	ttl := time.Duration(in.TTLSeconds) * time.Second

	return Settings{
		CodeLength:       in.CodeLength,
		TTL:              ttl,
		SenderID:         in.SenderID,
		Simulation:       cfg.GetBool(prefix + "simulation_mode"),
		Requirement:      entity.ParseRequirement(in.Requirement),
		SessionTTL:       max(time.Duration(in.SessionTTLSeconds)*time.Second, ttl),
		Retention:        time.Duration(in.RetentionSeconds) * time.Second,
		TransportTimeout: time.Duration(in.TransportTimeoutSeconds) * time.Second,
		SuccessURL:       in.SuccessURL,
	}, nil
}

// TTLMinutes is the lifetime in whole minutes as shown to the user.
func (s Settings) TTLMinutes() int {
	return int(s.TTL / time.Minute)
}
