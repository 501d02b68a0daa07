package subscriptiongate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	mu     sync.Mutex
	status Status
	err    error
	calls  int
	tokens []string
}

func (f *fakeChecker) Check(_ context.Context, token string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.tokens = append(f.tokens, token)
	return f.status, f.err
}

func (f *fakeChecker) set(status Status, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.err = err
}

func newTestGate(checker Checker, fake *clock.FakeClock) *Gate {
	return NewGate(Options{Enabled: true, Interval: time.Minute, Checker: checker, Clock: fake})
}

func TestAuthorizeFirstCheckIsSynchronous(t *testing.T) {
	checker := &fakeChecker{status: Status{Subscribed: true}}
	gate := newTestGate(checker, clock.NewFakeClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, gate.Authorize(context.Background(), "user-1", "tok"))
	require.NoError(t, gate.Authorize(context.Background(), "user-1", "tok"))
	assert.Equal(t, 1, checker.calls)

	status, ok := gate.Status("user-1")
	require.True(t, ok)
	assert.True(t, status.Subscribed)
}

func TestAuthorizeUnsubscribedAndUnavailable(t *testing.T) {
	checker := &fakeChecker{err: errors.New("boom")}
	gate := newTestGate(checker, clock.NewFakeClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	assert.ErrorIs(t, gate.Authorize(context.Background(), "user-1", "tok"), ErrUnavailable)
	_, ok := gate.Status("user-1")
	assert.False(t, ok)

	checker.set(Status{Subscribed: false}, nil)
	assert.ErrorIs(t, gate.Authorize(context.Background(), "user-1", "tok"), ErrSubscriptionRequired)
}

func TestRefreshKeepsLastKnownStatusOnFailure(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	checker := &fakeChecker{status: Status{Subscribed: true}}
	gate := newTestGate(checker, fake)
	require.NoError(t, gate.Authorize(context.Background(), "user-1", "tok-1"))

	checker.set(Status{}, errors.New("timeout"))
	fake.Advance(time.Minute)
	gate.Refresh(context.Background())
	require.NoError(t, gate.Authorize(context.Background(), "user-1", "tok-2"))

	checker.set(Status{Subscribed: false}, nil)
	gate.Refresh(context.Background())
	assert.ErrorIs(t, gate.Authorize(context.Background(), "user-1", ""), ErrSubscriptionRequired)
	assert.Equal(t, "tok-2", checker.tokens[len(checker.tokens)-1])
}

func TestRefreshForgetsIdleUsers(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	checker := &fakeChecker{status: Status{Subscribed: true}}
	gate := newTestGate(checker, fake)
	require.NoError(t, gate.Authorize(context.Background(), "user-1", "tok"))

	fake.Advance(11 * time.Minute)
	gate.Refresh(context.Background())
	_, ok := gate.Status("user-1")
	assert.False(t, ok)
	assert.Equal(t, 1, checker.calls)
}

func TestDisabledGateAllowsEverything(t *testing.T) {
	checker := &fakeChecker{status: Status{Subscribed: false}}
	gate := NewGate(Options{Enabled: false, Checker: checker})
	assert.False(t, gate.Enabled())
	assert.NoError(t, gate.Authorize(context.Background(), "user-1", "tok"))
	assert.Equal(t, 0, checker.calls)

	var nilGate *Gate
	assert.NoError(t, nilGate.Authorize(context.Background(), "user-1", "tok"))
}

func TestRequireMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	checker := &fakeChecker{status: Status{Subscribed: false}}
	gate := newTestGate(checker, clock.NewFakeClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	var captured error
	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx := usercontext.WithUserID(c.Request.Context(), "user-1")
		c.Request = c.Request.WithContext(usercontext.WithAccessToken(ctx, "tok"))
		c.Next()
		if last := c.Errors.Last(); last != nil {
			captured = last.Err
			c.Status(http.StatusPaymentRequired)
		}
	})
	router.Use(gate.Require())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.ErrorIs(t, captured, ErrSubscriptionRequired)
	assert.Equal(t, []string{"tok"}, checker.tokens)
}

func TestHTTPChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"subscribed":true,"product_id":"prod_1","subscription_end":"2025-04-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	checker := NewHTTPChecker(srv.URL, srv.Client())
	status, err := checker.Check(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, status.Subscribed)
	require.NotNil(t, status.ProductID)
	assert.Equal(t, "prod_1", *status.ProductID)
	require.NotNil(t, status.SubscriptionEnd)

	_, err = checker.Check(context.Background(), "bad")
	assert.Error(t, err)

	_, err = NewHTTPChecker("", nil).Check(context.Background(), "good")
	assert.Error(t, err)
}
