package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	// StatusOverdue is derived at read time and never stored.
	StatusOverdue Status = "overdue"
)

// Billing is one month's recurring charge for one client. Amount is a
// snapshot of the client's recurrence value at generation time.
type Billing struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"not null;index" json:"user_id"`
	ClientID    snowflake.ID    `gorm:"not null;uniqueIndex:ux_billings_client_period,priority:1" json:"client_id"`
	Month       int             `gorm:"not null;uniqueIndex:ux_billings_client_period,priority:2" json:"month"`
	Year        int             `gorm:"not null;uniqueIndex:ux_billings_client_period,priority:3" json:"year"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	IsPaid      bool            `gorm:"not null;default:false" json:"is_paid"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	Status      Status          `gorm:"not null;default:pending" json:"status"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (Billing) TableName() string { return "billings" }

// ClientSummary is the slice of the owning client shown next to a billing.
type ClientSummary struct {
	ID              snowflake.ID `json:"id"`
	Name            string       `json:"name"`
	Email           *string      `json:"email,omitempty"`
	Phone           *string      `json:"phone,omitempty"`
	RecurrenceDate  *int         `json:"recurrence_date,omitempty"`
	ContractEndDate *time.Time   `json:"contract_end_date,omitempty"`
	Status          string       `json:"status,omitempty"`
}

// BillingView is a billing annotated with its effective status. The stored
// status stays available as StoredStatus.
type BillingView struct {
	Billing
	Status       Status         `json:"status"`
	StoredStatus Status         `json:"stored_status"`
	DueDate      time.Time      `json:"due_date"`
	Client       *ClientSummary `json:"client,omitempty"`
}
