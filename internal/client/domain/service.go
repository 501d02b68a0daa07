package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
)

type CreateClientRequest struct {
	Name            string           `json:"name" validate:"required,max=200"`
	LeadID          *string          `json:"lead_id"`
	Email           *string          `json:"email" validate:"omitempty,email"`
	Phone           *string          `json:"phone" validate:"omitempty,max=40"`
	Company         *string          `json:"company" validate:"omitempty,max=200"`
	ProductSold     *string          `json:"product_sold" validate:"omitempty,max=200"`
	Notes           *string          `json:"notes"`
	IsRecurrent     bool             `json:"is_recurrent"`
	RecurrenceValue *decimal.Decimal `json:"recurrence_value"`
	RecurrenceDate  *int             `json:"recurrence_date" validate:"omitempty,min=1,max=31"`
	ContractEndDate *string          `json:"contract_end_date" validate:"omitempty,datetime=2006-01-02"`
	Status          Status           `json:"status" validate:"omitempty,oneof=entregue andamento cancelado"`
	SaleValue       *decimal.Decimal `json:"sale_value"`
}

// UpdateClientRequest applies only the fields that are set. An empty
// contract_end_date clears the contract end.
type UpdateClientRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Email           *string          `json:"email" validate:"omitempty,email"`
	Phone           *string          `json:"phone" validate:"omitempty,max=40"`
	Company         *string          `json:"company" validate:"omitempty,max=200"`
	ProductSold     *string          `json:"product_sold" validate:"omitempty,max=200"`
	Notes           *string          `json:"notes"`
	IsRecurrent     *bool            `json:"is_recurrent"`
	RecurrenceValue *decimal.Decimal `json:"recurrence_value"`
	RecurrenceDate  *int             `json:"recurrence_date" validate:"omitempty,min=1,max=31"`
	ContractEndDate *string          `json:"contract_end_date"`
	Status          *Status          `json:"status" validate:"omitempty,oneof=entregue andamento cancelado"`
	SaleValue       *decimal.Decimal `json:"sale_value"`
}

type ListClientRequest struct {
	pagination.Pagination
	Status      string
	IsRecurrent *bool
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (Client, error)
	Get(ctx context.Context, id string) (Client, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidName            = errors.New("invalid_name")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrInvalidLeadID          = errors.New("invalid_lead_id")
	ErrInvalidRecurrenceValue = errors.New("invalid_recurrence_value")
	ErrInvalidSaleValue       = errors.New("invalid_sale_value")
	ErrInvalidContractEndDate = errors.New("invalid_contract_end_date")
	ErrNotFound               = errors.New("not_found")
)
