package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/smsotp/internal/pkg/clock"
	"github.com/shandysiswandi/smsotp/internal/pkg/goerror"
	"github.com/shandysiswandi/smsotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/smsotp/internal/pkg/hash"
	"github.com/shandysiswandi/smsotp/internal/pkg/i18n"
	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/jwt"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/smsotp/internal/pkg/sms"
	"github.com/shandysiswandi/smsotp/internal/pkg/uid"
	"github.com/shandysiswandi/smsotp/internal/pkg/validator"
	"github.com/shandysiswandi/smsotp/internal/pkg/valueobject"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
	"github.com/shandysiswandi/smsotp/internal/smsotp/outbound/store"
)

const (
	testPassword = "s3cret-pass"
	codeFirst    = "482913"
	codeSecond   = "105377"
	aliceMobile  = "+15550001"
)

var (
	t0    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alice = entity.NewIdentityKey("acme", "alice")
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []sms.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg sms.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeSender) sent() []sms.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sms.Message(nil), f.msgs...)
}

type fakeRepoDB struct {
	users map[string]*entity.User
	err   error
}

func (f *fakeRepoDB) GetUserByUsername(_ context.Context, key entity.IdentityKey) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[key.String()]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return u, nil
}

type fakeMessaging struct {
	mu       sync.Mutex
	issued   []ChallengeIssuedEvent
	verified []ChallengeVerifiedEvent
}

func (f *fakeMessaging) PublishChallengeIssued(_ context.Context, msg ChallengeIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMessaging) PublishChallengeVerified(_ context.Context, msg ChallengeVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, msg)
	return nil
}

// fixedCodes hands out codes in order and repeats the last one.
type fixedCodes struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (f *fixedCodes) Generate(length int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := f.codes[min(f.next, len(f.codes)-1)]
	f.next++
	if len(code) != length {
		return "", fmt.Errorf("fixed code %q is not %d digits", code, length)
	}
	return code, nil
}

type seqID struct{ n atomic.Int64 }

func (s *seqID) Generate() int64 { return s.n.Add(1) }

type seqHandle struct{ n atomic.Int64 }

func (s *seqHandle) Generate() string { return fmt.Sprintf("handle-%d", s.n.Add(1)) }

type harness struct {
	uc       *Usecase
	clk      *clock.Frozen
	sender   *fakeSender
	repo     *fakeRepoDB
	events   *fakeMessaging
	sessions *store.Sessions
	jwt      *jwt.Symmetric
	keyer    *hash.HMACSHA256
	gm       *goroutine.Manager
}

func testSettings() Settings {
	return Settings{
		CodeLength:       6,
		TTL:              300 * time.Second,
		SenderID:         "ACME",
		Requirement:      entity.RequirementRequired,
		SessionTTL:       30 * time.Minute,
		Retention:        300 * time.Second,
		TransportTimeout: 2 * time.Second,
	}
}

func newHarness(t *testing.T, mutate ...func(*Settings)) *harness {
	t.Helper()

	settings := testSettings()
	for _, m := range mutate {
		m(&settings)
	}

	clk := clock.NewFrozen(t0)
	kv := kvstore.NewMemory(clk, 0)
	t.Cleanup(func() { _ = kv.Close() })

	ins := instrument.NewNoop()
	keyer := hash.NewHMACSHA256("test-secret")
	challenges := store.NewChallenges(kv, keyer, settings.Retention, ins)
	sessions := store.NewSessions(kv, keyer, ins)

	texts, err := i18n.New()
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	token, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "smsotp-test",
		Audiences: []string{"smsotp"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	password := hash.NewBcrypt(4, "")
	hashed, err := password.Hash(testPassword)
	require.NoError(t, err)

	repo := &fakeRepoDB{users: map[string]*entity.User{
		"acme:alice": {
			ID: 1, Realm: "acme", Username: "alice", PasswordHash: string(hashed), Enabled: true,
			Attributes: valueobject.Attributes{entity.AttributeMobileNumber: {aliceMobile}},
		},
		"acme:bob": {
			ID: 2, Realm: "acme", Username: "bob", PasswordHash: string(hashed), Enabled: true,
		},
		"acme:carol": {
			ID: 3, Realm: "acme", Username: "carol", PasswordHash: string(hashed), Enabled: false,
			Attributes: valueobject.Attributes{entity.AttributeMobileNumber: {"+15550003"}},
		},
	}}

	h := &harness{
		clk:      clk,
		sender:   &fakeSender{},
		repo:     repo,
		events:   &fakeMessaging{},
		sessions: sessions,
		jwt:      token,
		keyer:    keyer,
		gm:       goroutine.NewManager(64),
	}

	h.uc = New(Dependency{
		Settings:           settings,
		RepoDB:             repo,
		RepoMessaging:      h.events,
		SessionChallenges:  challenges.Session(),
		IdentityChallenges: challenges.Identity(),
		Sessions:           sessions,
		Sweeper:            challenges,
		Sender:             h.sender,
		Dispatcher:         h.sender,
		Texts:              texts,
		OTP:                &fixedCodes{codes: []string{codeFirst, codeSecond}},
		Password:           password,
		Keyer:              keyer,
		Validator:          v,
		UID:                &seqID{},
		Handle:             &seqHandle{},
		Clock:              clk,
		JWT:                token,
		Instrument:         ins,
		Goroutine:          h.gm,
	})

	return h
}

func (h *harness) issue(t *testing.T, handle string) *IssueOutput {
	t.Helper()

	channel := entity.ChannelNonInteractive
	if handle != "" {
		channel = entity.ChannelInteractive
	}

	out, err := h.uc.IssueChallenge(context.Background(), IssueInput{
		Identity:      alice,
		Destination:   aliceMobile,
		SessionHandle: handle,
		Channel:       channel,
	})
	require.NoError(t, err)
	return out
}

func (h *harness) verify(t *testing.T, handle, code string) entity.Outcome {
	t.Helper()

	channel := entity.ChannelNonInteractive
	if handle != "" {
		channel = entity.ChannelInteractive
	}

	outcome, err := h.uc.VerifyCode(context.Background(), VerifyInput{
		Identity:      alice,
		SessionHandle: handle,
		Code:          code,
		Channel:       channel,
	})
	require.NoError(t, err)
	return outcome
}

// drain waits for published events. The manager is closed afterwards.
func (h *harness) drain(t *testing.T) *fakeMessaging {
	t.Helper()
	require.NoError(t, h.gm.Wait())
	return h.events
}
