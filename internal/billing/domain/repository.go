package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// BillingWithClient is a billing row joined with its owning client.
type BillingWithClient struct {
	Billing
	ClientName            string
	ClientEmail           *string
	ClientPhone           *string
	ClientRecurrenceDate  *int
	ClientContractEndDate *time.Time
	ClientStatus          *string
}

func (b BillingWithClient) Summary() *ClientSummary {
	summary := &ClientSummary{
		ID:              b.ClientID,
		Name:            b.ClientName,
		Email:           b.ClientEmail,
		Phone:           b.ClientPhone,
		RecurrenceDate:  b.ClientRecurrenceDate,
		ContractEndDate: b.ClientContractEndDate,
	}
	if b.ClientStatus != nil {
		summary.Status = *b.ClientStatus
	}
	return summary
}

type ListBillingFilter struct {
	Period *Period
	Status Status
	IsPaid *bool
}

type Repository interface {
	// InsertIgnoreConflicts inserts rows in one statement, skipping rows whose
	// (client_id, month, year) already exists. It returns the rows inserted.
	InsertIgnoreConflicts(ctx context.Context, db *gorm.DB, billings []*Billing) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*Billing, error)
	FindWithClient(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*BillingWithClient, error)
	ListClientIDsByPeriod(ctx context.Context, db *gorm.DB, userID string, period Period, status Status) ([]snowflake.ID, error)
	ListWithClients(ctx context.Context, db *gorm.DB, userID string, filter ListBillingFilter) ([]BillingWithClient, error)
	ListOutstanding(ctx context.Context, db *gorm.DB, userID string) ([]BillingWithClient, error)
	UpdateFields(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID, fields map[string]any) (int64, error)
}
