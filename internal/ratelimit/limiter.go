package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartgiftfinder/giftfinder/internal/logging"
)

// failOpenRemaining is the sentinel quota reported when the store is
// unavailable and the limiter degrades to permissive.
const failOpenRemaining = 999

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	// Allowed reports whether the request should proceed.
	Allowed bool
	// Remaining is the quota left in the current window after this request.
	Remaining int
	// ResetAt is when a slot next frees up (or the window ends, when allowed).
	ResetAt time.Time
	// RetryAfter is the suggested wait in whole seconds. Zero when allowed.
	RetryAfter int
}

// Limiter applies sliding-window rate limits backed by a shared CounterStore.
//
// Every check is a live read-then-write against the store; nothing is cached
// locally. Two concurrent checks for the same identity can therefore both read
// under the ceiling and both admit. That transient over-admission is bounded
// by request concurrency and accepted instead of paying for distributed locks.
type Limiter struct {
	store    CounterStore
	policies map[string]Policy
	logger   *logging.Logger
	now      func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithPolicies replaces the default policy table.
func WithPolicies(policies map[string]Policy) Option {
	return func(l *Limiter) { l.policies = policies }
}

// WithClock replaces the time source. Tests use this to advance the window
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a limiter. A nil store is valid and makes every check fail open,
// so a deployment without a configured counter store degrades to permissive
// instead of refusing to start.
func New(store CounterStore, logger *logging.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:    store,
		policies: DefaultPolicies(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PolicyFor resolves an endpoint class to its policy. Unknown classes fall
// back to the general policy rather than bypassing limiting.
func (l *Limiter) PolicyFor(class string) Policy {
	if policy, ok := l.policies[class]; ok {
		return policy
	}
	l.warn("Unknown rate limit class, using general policy", map[string]interface{}{"class": class})
	return l.policies[ClassGeneral]
}

// Check decides whether the request may proceed under the named endpoint
// class. It never returns an error: store failures degrade to a permissive
// decision (fail open) so a limiter outage can not take down the endpoint
// it protects.
func (l *Limiter) Check(ctx context.Context, r *http.Request, class string, userID string) Decision {
	policy := l.PolicyFor(class)
	now := l.now()

	decision, err := l.check(ctx, r, policy, userID, now)
	if err != nil {
		l.warn("Rate limit store error, failing open", map[string]interface{}{
			"class": class,
			"error": err.Error(),
		})
		return failOpen(now)
	}
	return decision
}

// check is the single error boundary around the store. Any error returned
// here is converted to a fail-open decision by Check.
func (l *Limiter) check(ctx context.Context, r *http.Request, policy Policy, userID string, now time.Time) (Decision, error) {
	if l.store == nil {
		return failOpen(now), nil
	}

	identity := ResolveIdentity(r, userID)
	key := policy.KeyPrefix + ":" + identity

	// Inclusive at the lower bound: a timestamp exactly one window old still counts.
	windowStart := now.Add(-policy.Window)
	members, err := l.store.RangeByScore(ctx, key, windowStart.UnixMilli(), now.UnixMilli())
	if err != nil {
		return Decision{}, err
	}

	count := len(members)
	if count >= policy.MaxRequests {
		// The oldest counted request leaves the window first; that instant
		// frees a slot. Rejected attempts are not recorded.
		oldest, err := memberTimestamp(members[0])
		if err != nil {
			return Decision{}, err
		}
		resetAt := time.UnixMilli(oldest).Add(policy.Window)
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: ceilSeconds(resetAt.Sub(now)),
		}, nil
	}

	ts := now.UnixMilli()
	if err := l.store.Add(ctx, key, ts, newMember(ts)); err != nil {
		return Decision{}, err
	}
	if err := l.store.SetExpiry(ctx, key, ceilToSecond(policy.Window)); err != nil {
		return Decision{}, err
	}

	return Decision{
		Allowed:   true,
		Remaining: policy.MaxRequests - count - 1,
		ResetAt:   now.Add(policy.Window),
	}, nil
}

// CleanupExpired trims entries that have aged out of every policy's window.
// The per-key TTL already garbage-collects idle keys; this additionally trims
// active-but-sparse keys. Admission correctness does not depend on it running,
// so errors are logged and swallowed.
func (l *Limiter) CleanupExpired(ctx context.Context) {
	if l.store == nil {
		return
	}
	now := l.now()

	for class, policy := range l.policies {
		keys, err := l.store.Keys(ctx, policy.KeyPrefix+":*")
		if err != nil {
			l.warn("Rate limit cleanup failed to list keys", map[string]interface{}{
				"class": class,
				"error": err.Error(),
			})
			continue
		}

		cutoff := now.Add(-policy.Window).UnixMilli()
		for _, key := range keys {
			if err := l.store.RemoveByScoreRange(ctx, key, 0, cutoff-1); err != nil {
				l.warn("Rate limit cleanup failed to trim key", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}
}

func failOpen(now time.Time) Decision {
	return Decision{
		Allowed:   true,
		Remaining: failOpenRemaining,
		ResetAt:   now.Add(time.Minute),
	}
}

func (l *Limiter) warn(msg string, fields map[string]interface{}) {
	if l.logger != nil {
		l.logger.Warn(msg, fields)
	}
}

// newMember encodes an admitted request. The timestamp prefix carries the
// window position; the uuid suffix keeps same-millisecond requests distinct
// under the store's set semantics, so each one is counted.
func newMember(ts int64) string {
	return strconv.FormatInt(ts, 10) + "-" + uuid.NewString()
}

func memberTimestamp(member string) (int64, error) {
	prefix, _, _ := strings.Cut(member, "-")
	return strconv.ParseInt(prefix, 10, 64)
}

func ceilSeconds(d time.Duration) int {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

func ceilToSecond(d time.Duration) time.Duration {
	if rem := d % time.Second; rem != 0 {
		return d - rem + time.Second
	}
	return d
}
