package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDelivered  Status = "entregue"
	StatusInProgress Status = "andamento"
	StatusCancelled  Status = "cancelado"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDelivered, StatusInProgress, StatusCancelled:
		return true
	default:
		return false
	}
}

// Client carries the recurrence configuration billing generation reads.
type Client struct {
	ID              snowflake.ID     `gorm:"primaryKey" json:"id"`
	UserID          string           `gorm:"not null;index" json:"user_id"`
	LeadID          *snowflake.ID    `json:"lead_id,omitempty"`
	Name            string           `gorm:"not null" json:"name"`
	Email           *string          `json:"email,omitempty"`
	Phone           *string          `json:"phone,omitempty"`
	Company         *string          `json:"company,omitempty"`
	ProductSold     *string          `json:"product_sold,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	IsRecurrent     bool             `gorm:"not null;default:false" json:"is_recurrent"`
	RecurrenceValue *decimal.Decimal `gorm:"type:numeric(14,2)" json:"recurrence_value,omitempty"`
	RecurrenceDate  *int             `json:"recurrence_date,omitempty"`
	ContractEndDate *time.Time       `gorm:"type:date" json:"contract_end_date,omitempty"`
	Status          Status           `gorm:"not null;default:andamento" json:"status"`
	SaleValue       *decimal.Decimal `gorm:"type:numeric(14,2)" json:"sale_value,omitempty"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// RecurringAmount returns the per-cycle charge, zero when unset.
func (c Client) RecurringAmount() decimal.Decimal {
	if c.RecurrenceValue == nil {
		return decimal.Zero
	}
	return *c.RecurrenceValue
}

func (c Client) SaleAmount() decimal.Decimal {
	if c.SaleValue == nil {
		return decimal.Zero
	}
	return *c.SaleValue
}
