package subscriptiongate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/observability/metrics"
	"go.uber.org/zap"
)

var (
	ErrSubscriptionRequired = errors.New("subscription_required")
	ErrUnavailable          = errors.New("subscription_check_unavailable")
)

// Users not seen for this many intervals stop being refreshed.
const idleIntervals = 10

type entry struct {
	status    Status
	token     string
	checkedAt time.Time
	lastSeen  time.Time
}

// Gate caches the last known subscription status per user and refreshes it
// in the background. Only the first check for a user happens on the request
// path; a failed refresh keeps the previous status.
type Gate struct {
	enabled  bool
	interval time.Duration
	checker  Checker
	clock    clock.Clock
	log      *zap.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	entries map[string]*entry
}

type Options struct {
	Enabled  bool
	Interval time.Duration
	Checker  Checker
	Clock    clock.Clock
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

func NewGate(opts Options) *Gate {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Gate{
		enabled:  opts.Enabled && opts.Checker != nil,
		interval: interval,
		checker:  opts.Checker,
		clock:    clk,
		log:      log.Named("subscriptiongate"),
		metrics:  opts.Metrics,
		entries:  make(map[string]*entry),
	}
}

func (g *Gate) Enabled() bool {
	return g != nil && g.enabled
}

// Authorize returns nil when the user may proceed.
func (g *Gate) Authorize(ctx context.Context, userID, token string) error {
	if !g.Enabled() {
		return nil
	}
	userID = strings.TrimSpace(userID)
	now := g.clock.Now()

	g.mu.Lock()
	e, ok := g.entries[userID]
	if ok {
		e.lastSeen = now
		if token != "" {
			e.token = token
		}
		subscribed := e.status.Subscribed
		g.mu.Unlock()
		if !subscribed {
			return ErrSubscriptionRequired
		}
		return nil
	}
	g.mu.Unlock()

	status, err := g.check(ctx, userID, token)
	if err != nil {
		return ErrUnavailable
	}

	g.mu.Lock()
	g.entries[userID] = &entry{status: status, token: token, checkedAt: now, lastSeen: now}
	g.mu.Unlock()

	if !status.Subscribed {
		return ErrSubscriptionRequired
	}
	return nil
}

// Status returns the last known status for the user.
func (g *Gate) Status(userID string) (Status, bool) {
	if g == nil {
		return Status{}, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[strings.TrimSpace(userID)]
	if !ok {
		return Status{}, false
	}
	return e.status, true
}

// Refresh re-checks every user seen recently and forgets idle ones.
func (g *Gate) Refresh(ctx context.Context) {
	if !g.Enabled() {
		return
	}
	now := g.clock.Now()
	idleAfter := g.interval * idleIntervals

	type target struct {
		userID string
		token  string
	}
	var targets []target

	g.mu.Lock()
	for userID, e := range g.entries {
		if now.Sub(e.lastSeen) > idleAfter {
			delete(g.entries, userID)
			continue
		}
		targets = append(targets, target{userID: userID, token: e.token})
	}
	g.mu.Unlock()

	for _, t := range targets {
		if ctx.Err() != nil {
			return
		}
		status, err := g.check(ctx, t.userID, t.token)
		if err != nil {
			continue
		}
		g.mu.Lock()
		if e, ok := g.entries[t.userID]; ok {
			e.status = status
			e.checkedAt = now
		}
		g.mu.Unlock()
	}
}

func (g *Gate) RunForever(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Refresh(ctx)
		}
	}
}

func (g *Gate) check(ctx context.Context, userID, token string) (Status, error) {
	status, err := g.checker.Check(ctx, token)
	if err != nil {
		g.metrics.IncSubscriptionCheck(metrics.SubscriptionResultError)
		g.log.Warn("subscription check failed", zap.String("user_id", userID), zap.Error(err))
		return Status{}, err
	}
	if status.Subscribed {
		g.metrics.IncSubscriptionCheck(metrics.SubscriptionResultActive)
	} else {
		g.metrics.IncSubscriptionCheck(metrics.SubscriptionResultInactive)
	}
	return status, nil
}
