package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/gestao/internal/billing/domain"
)

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalInt(value string) (int, bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false, err
	}
	return parsed, true, nil
}

// periodFromQuery reads month and year, defaulting each to the current month
// in the billing timezone.
func (s *Server) periodFromQuery(c *gin.Context) (billingdomain.Period, error) {
	current := billingdomain.PeriodOf(s.clock.Now(), s.policy.Get().Location())

	month, ok, err := parseOptionalInt(c.Query("month"))
	if err != nil {
		return billingdomain.Period{}, billingdomain.ErrInvalidMonth
	}
	if !ok {
		month = current.Month
	}
	year, ok, err := parseOptionalInt(c.Query("year"))
	if err != nil {
		return billingdomain.Period{}, billingdomain.ErrInvalidYear
	}
	if !ok {
		year = current.Year
	}

	period := billingdomain.Period{Month: month, Year: year}
	if err := period.Validate(); err != nil {
		return billingdomain.Period{}, err
	}
	return period, nil
}
