package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyGenerationLock = "billing:generate:%s:%04d-%02d"

	defaultGenerationTTL  = 30 * time.Second
	defaultGenerationWait = 5 * time.Second
	defaultRetryBackoff   = 100 * time.Millisecond
)

// ReleaseFunc gives a held period lock back. It is safe to call after the
// lock expired.
type ReleaseFunc func(ctx context.Context) error

func noopRelease(context.Context) error { return nil }

// GenerationLock serializes billing generation per user and period across
// replicas. A nil GenerationLock always grants the lock.
type GenerationLock struct {
	client  *redislock.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
}

func NewGenerationLock(client *redis.Client) *GenerationLock {
	if client == nil {
		return nil
	}
	return &GenerationLock{
		client:  redislock.New(client),
		ttl:     defaultGenerationTTL,
		wait:    defaultGenerationWait,
		backoff: defaultRetryBackoff,
	}
}

func (g *GenerationLock) Enabled() bool {
	return g != nil && g.client != nil
}

// AcquirePeriod takes the lock for (user, month, year). When another replica
// holds it, AcquirePeriod waits for its release, so a caller that gets the
// lock sees every row the previous holder inserted. ok is false only when the
// holder kept the lock past the wait window.
func (g *GenerationLock) AcquirePeriod(ctx context.Context, userID string, month, year int) (ReleaseFunc, bool, error) {
	if !g.Enabled() {
		return noopRelease, true, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.wait)
	defer cancel()

	held, err := g.client.Obtain(waitCtx, generationKey(userID, month, year), g.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(g.backoff),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return noopRelease, false, nil
	}
	if err != nil {
		return noopRelease, false, err
	}

	return func(ctx context.Context) error {
		if err := held.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, true, nil
}

func generationKey(userID string, month, year int) string {
	return fmt.Sprintf(keyGenerationLock, strings.TrimSpace(userID), year, month)
}
