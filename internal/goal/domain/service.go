package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateGoalRequest struct {
	Title        string           `json:"title" validate:"required,max=200"`
	TargetValue  decimal.Decimal  `json:"target_value"`
	CurrentValue *decimal.Decimal `json:"current_value"`
	Type         Type             `json:"type" validate:"omitempty,oneof=faturamento personalizado"`
	Month        int              `json:"month" validate:"required,min=1,max=12"`
	Year         int              `json:"year" validate:"required,min=1970,max=9999"`
}

type UpdateGoalRequest struct {
	Title        *string          `json:"title" validate:"omitempty,min=1,max=200"`
	TargetValue  *decimal.Decimal `json:"target_value"`
	CurrentValue *decimal.Decimal `json:"current_value"`
}

type Service interface {
	Create(ctx context.Context, req CreateGoalRequest) (Goal, error)
	Update(ctx context.Context, id string, req UpdateGoalRequest) (Goal, error)
	Delete(ctx context.Context, id string) error
	// List returns every goal, most recent period first.
	List(ctx context.Context) ([]Goal, error)
	ListByMonth(ctx context.Context, month, year int) ([]Goal, error)
	// RevenueGoal returns nil when the period has no revenue goal.
	RevenueGoal(ctx context.Context, month, year int) (*Goal, error)
	EnsureRevenueGoal(ctx context.Context, month, year int) (Goal, error)
}

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidTitle       = errors.New("invalid_title")
	ErrInvalidTargetValue = errors.New("invalid_target_value")
	ErrInvalidPeriod      = errors.New("invalid_period")
	ErrNotFound           = errors.New("not_found")
	ErrConflict           = errors.New("conflict")
)
