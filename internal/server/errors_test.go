package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/smallbiznis/gestao/internal/auth"
	billingdomain "github.com/smallbiznis/gestao/internal/billing/domain"
	goaldomain "github.com/smallbiznis/gestao/internal/goal/domain"
	leaddomain "github.com/smallbiznis/gestao/internal/lead/domain"
	"github.com/smallbiznis/gestao/internal/subscriptiongate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "unauthorized"},
		{"service unauthenticated", leaddomain.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{"subscription", subscriptiongate.ErrSubscriptionRequired, http.StatusPaymentRequired, "subscription_required"},
		{"cancelled billing", billingdomain.ErrCancelledBilling, http.StatusConflict, "conflict"},
		{"goal conflict", fmt.Errorf("create: %w", goaldomain.ErrConflict), http.StatusConflict, "conflict"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"gate unavailable", subscriptiongate.ErrUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestMapErrorDomainValidation(t *testing.T) {
	status, payload := mapError(billingdomain.ErrInvalidMonth)
	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "month", payload.Errors[0].Field)
	assert.Equal(t, "invalid_month", payload.Errors[0].Code)

	status, payload = mapError(invalidRequestError())
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "request", payload.Errors[0].Field)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(goaldomain.ErrInvalidTargetValue)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "invalid_target_value", code)

	typ, code = classifyErrorForLog(goaldomain.ErrNotFound)
	assert.Equal(t, "not_found", typ)
	assert.Equal(t, "not_found", code)
}
