package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/gestao/internal/billing/domain"
	clientdomain "github.com/smallbiznis/gestao/internal/client/domain"
	goaldomain "github.com/smallbiznis/gestao/internal/goal/domain"
	leaddomain "github.com/smallbiznis/gestao/internal/lead/domain"
)

type Dashboard struct {
	Month int `json:"month"`
	Year  int `json:"year"`

	LeadsToday     int64                       `json:"leads_today"`
	TotalLeads     int64                       `json:"total_leads"`
	StageCounts    map[leaddomain.Stage]int64  `json:"stage_counts"`
	SourceCounts   map[leaddomain.Source]int64 `json:"source_counts"`
	WeekLeads      map[string]int64            `json:"week_leads"`
	RecentLeads    []leaddomain.Lead           `json:"recent_leads"`
	ConversionRate int64                       `json:"conversion_rate"`

	TotalClients      int64                         `json:"total_clients"`
	RecurringClients  int64                         `json:"recurring_clients"`
	StatusCounts      map[clientdomain.Status]int64 `json:"status_counts"`
	MonthRevenue      decimal.Decimal               `json:"month_revenue"`
	SalesCount        int64                         `json:"sales_count"`
	MonthlyRecurrence decimal.Decimal               `json:"monthly_recurrence"`
	TotalSalesValue   decimal.Decimal               `json:"total_sales_value"`

	PaidMRR           decimal.Decimal `json:"paid_mrr"`
	TotalMonthRevenue decimal.Decimal `json:"total_month_revenue"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	PendingCount      int64           `json:"pending_count"`
	ChurnValue        decimal.Decimal `json:"churn_value"`
	ChurnCount        int64           `json:"churn_count"`
	ChurnRate         int64           `json:"churn_rate"`

	MonthGoal *goaldomain.GoalProgress `json:"month_goal,omitempty"`
}

type Service interface {
	// Dashboard reports the current month in the billing policy timezone.
	Dashboard(ctx context.Context) (Dashboard, error)
	MonthlyRevenue(ctx context.Context, period billingdomain.Period) (Revenue, error)
	Churn(ctx context.Context, period billingdomain.Period) (Churn, error)
	PaidMRR(ctx context.Context, period billingdomain.Period) (decimal.Decimal, error)
}

var ErrUnauthenticated = errors.New("unauthenticated")
