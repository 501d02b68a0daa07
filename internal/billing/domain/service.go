package domain

import (
	"context"
	"errors"
)

type GenerateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type GenerateResult struct {
	Created int `json:"created"`
}

type ListPeriodRequest struct {
	Month int
	Year  int
}

// ListRequest lists billings newest first. Month and Year filter only when
// both are set.
type ListRequest struct {
	Month int
	Year  int
}

type UpdateNotesRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type RecurringClient struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	RecurrenceValue string  `json:"recurrence_value"`
	RecurrenceDate  *int    `json:"recurrence_date,omitempty"`
	ContractEndDate *string `json:"contract_end_date,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	ListPeriod(ctx context.Context, req ListPeriodRequest) ([]BillingView, error)
	List(ctx context.Context, req ListRequest) ([]BillingView, error)
	ListOutstanding(ctx context.Context) ([]BillingView, error)
	MarkPaid(ctx context.Context, id string) (BillingView, error)
	MarkUnpaid(ctx context.Context, id string) (BillingView, error)
	Cancel(ctx context.Context, id string) (BillingView, error)
	UpdateNotes(ctx context.Context, id string, req UpdateNotesRequest) (BillingView, error)
	Summarize(views []BillingView) Summary
	RecurringClientsForMonth(ctx context.Context, period Period) ([]RecurringClient, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidMonth    = errors.New("invalid_month")
	ErrInvalidYear     = errors.New("invalid_year")
	ErrNotFound        = errors.New("not_found")
	// ErrCancelledBilling rejects payment changes on a cancelled billing.
	ErrCancelledBilling = errors.New("billing_cancelled")
)
