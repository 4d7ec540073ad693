package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/smsotp/internal/pkg/instrument"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/smsotp/internal/smsotp/entity"
)

// Challenges holds at most one challenge per key in each of two views: one
// addressed by interactive session handle, one by identity.
type Challenges struct {
	kv       kvstore.Store
	session  *View
	identity *View
	tracer   tracer
}

// minRetention keeps an entry past its expiry for at least one second, so
// the expiry instant itself is served and a late code reads as expired.
const minRetention = time.Second

// NewChallenges builds both views over kv. Entries stay readable for
// retention after they expire so a late correct code is reported as expired
// instead of missing. Retention below minRetention is raised to it.
func NewChallenges(kv kvstore.Store, k keyer, retention time.Duration, ins instrument.Instrumentation) *Challenges {
	c := &Challenges{kv: kv, tracer: tracer{ins: ins}}
	c.session = c.newView("session", prefixSessionChallenge, k, retention)
	c.identity = c.newView("identity", prefixIdentityChallenge, k, retention)
	return c
}

func (c *Challenges) newView(name, prefix string, k keyer, retention time.Duration) *View {
	return &View{
		name:      name,
		data:      kvstore.JSON[entity.Challenge]{Underlying: c.kv, Prefix: prefix},
		keyer:     k,
		retention: max(retention, minRetention),
		sweep:     c.Sweep,
		tracer:    c.tracer,
	}
}

// Session is the view keyed by interactive session handle.
func (c *Challenges) Session() *View { return c.session }

// Identity is the view keyed by realm and username.
func (c *Challenges) Identity() *View { return c.identity }

// Sweep drops every entry past its stored deadline.
func (c *Challenges) Sweep(ctx context.Context) (_ int, err error) {
	ctx, span := c.tracer.startSpan(ctx, "Sweep")
	defer func() { c.tracer.endSpan(span, err) }()

	n, err := c.kv.Sweep(ctx)
	if n > 0 {
		slog.DebugContext(ctx, "swept expired entries", "count", n)
	}
	return n, err
}

// View is one addressing scheme over the challenge store.
type View struct {
	name      string
	data      kvstore.JSON[entity.Challenge]
	keyer     keyer
	retention time.Duration
	sweep     func(ctx context.Context) (int, error)
	tracer    tracer
}

// Put stores ch under key, replacing whatever was there. Expired entries are
// swept first.
func (v *View) Put(ctx context.Context, key string, ch entity.Challenge) (err error) {
	ctx, span := v.tracer.startSpan(ctx, "Put."+v.name)
	defer func() { v.tracer.endSpan(span, err) }()

	if _, serr := v.sweep(ctx); serr != nil {
		slog.WarnContext(ctx, "failed to sweep challenge store", "view", v.name, "error", serr)
	}

	return v.data.Set(ctx, v.keyer.Key(key), ch, ch.ExpiresAt.Add(v.retention))
}

// Get returns the challenge under key or goerror.ErrNotFound.
func (v *View) Get(ctx context.Context, key string) (_ entity.Challenge, err error) {
	ctx, span := v.tracer.startSpan(ctx, "Get."+v.name)
	defer func() { v.tracer.endSpan(span, err) }()

	ch, err := v.data.Get(ctx, v.keyer.Key(key))
	return ch, mapError(err)
}

// Remove deletes key. Removing a missing key is not an error.
func (v *View) Remove(ctx context.Context, key string) (err error) {
	ctx, span := v.tracer.startSpan(ctx, "Remove."+v.name)
	defer func() { v.tracer.endSpan(span, err) }()

	return v.data.Delete(ctx, v.keyer.Key(key))
}

// Consume deletes the challenge under key only if it is still the one with
// id, and reports whether this call deleted it. Of two concurrent callers at
// most one gets true.
func (v *View) Consume(ctx context.Context, key string, id int64) (_ bool, err error) {
	ctx, span := v.tracer.startSpan(ctx, "Consume."+v.name)
	defer func() { v.tracer.endSpan(span, err) }()

	k := v.keyer.Key(key)

	ch, raw, err := v.data.GetRaw(ctx, k)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if ch.ID != id {
		return false, nil
	}

	return v.data.CompareAndDelete(ctx, k, raw)
}
