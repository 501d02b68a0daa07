package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
)

type CreateLeadRequest struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	Phone          *string          `json:"phone" validate:"omitempty,max=40"`
	Source         Source           `json:"source" validate:"omitempty,oneof=instagram prospeccao trafego_pago indicacao outro"`
	Stage          Stage            `json:"stage" validate:"omitempty,oneof=contato_feito aquecendo proposta_enviada venda_concluida"`
	EstimatedValue *decimal.Decimal `json:"estimated_value"`
	Tags           []string         `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
	Notes          *string          `json:"notes"`
}

type UpdateLeadRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	Phone          *string          `json:"phone" validate:"omitempty,max=40"`
	Source         *Source          `json:"source" validate:"omitempty,oneof=instagram prospeccao trafego_pago indicacao outro"`
	Stage          *Stage           `json:"stage" validate:"omitempty,oneof=contato_feito aquecendo proposta_enviada venda_concluida"`
	EstimatedValue *decimal.Decimal `json:"estimated_value"`
	Tags           []string         `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
	Notes          *string          `json:"notes"`
}

type ListLeadRequest struct {
	pagination.Pagination
	Stage string
}

type ListLeadResponse struct {
	pagination.PageInfo
	Leads []Lead `json:"leads"`
}

// Stats is the pipeline snapshot the dashboard reads.
type Stats struct {
	Total        int64            `json:"total"`
	CreatedToday int64            `json:"created_today"`
	ByStage      map[Stage]int64  `json:"by_stage"`
	BySource     map[Source]int64 `json:"by_source"`
	// CreatedThisWeek buckets lead creation by calendar date.
	CreatedThisWeek map[string]int64 `json:"created_this_week"`
	Recent          []Lead           `json:"recent"`
}

type Service interface {
	Create(ctx context.Context, req CreateLeadRequest) (Lead, error)
	Update(ctx context.Context, id string, req UpdateLeadRequest) (Lead, error)
	Get(ctx context.Context, id string) (Lead, error)
	List(ctx context.Context, req ListLeadRequest) (ListLeadResponse, error)
	Delete(ctx context.Context, id string) error
	StageCounts(ctx context.Context) (map[Stage]int64, error)
	Stats(ctx context.Context, now time.Time, loc *time.Location) (Stats, error)
}

var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidStage          = errors.New("invalid_stage")
	ErrInvalidEstimatedValue = errors.New("invalid_estimated_value")
	ErrNotFound              = errors.New("not_found")
)
