package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/gestao/internal/billing/domain"
	clientdomain "github.com/smallbiznis/gestao/internal/client/domain"
)

// Churn is the count and value of billings cancelled in a period.
type Churn struct {
	Count int64           `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// Revenue splits a month's revenue into one-off sales and collected recurrence.
type Revenue struct {
	Sales      decimal.Decimal `json:"sales"`
	Recurrence decimal.Decimal `json:"recurrence"`
	Total      decimal.Decimal `json:"total"`
}

// PaidMRR sums billings that are paid, either by status or by the legacy flag.
func PaidMRR(billings []billingdomain.Billing) decimal.Decimal {
	total := decimal.Zero
	for _, b := range billings {
		if b.Status == billingdomain.StatusPaid || b.IsPaid {
			total = total.Add(b.Amount)
		}
	}
	return total
}

func ChurnOf(billings []billingdomain.Billing) Churn {
	churn := Churn{Value: decimal.Zero}
	for _, b := range billings {
		if b.Status != billingdomain.StatusCancelled {
			continue
		}
		churn.Count++
		churn.Value = churn.Value.Add(b.Amount)
	}
	return churn
}

// PendingAmount sums views whose effective status is pending or overdue.
func PendingAmount(views []billingdomain.BillingView) (decimal.Decimal, int64) {
	total := decimal.Zero
	var count int64
	for _, v := range views {
		if v.Status == billingdomain.StatusPending || v.Status == billingdomain.StatusOverdue {
			total = total.Add(v.Amount)
			count++
		}
	}
	return total, count
}

// SalesOf sums sale values of clients created within the period and counts
// those with a positive sale.
func SalesOf(clients []clientdomain.Client, period billingdomain.Period, loc *time.Location) (decimal.Decimal, int64) {
	start := billingdomain.FirstDayOf(period, loc)
	end := billingdomain.NextPeriodStart(period, loc)

	total := decimal.Zero
	var count int64
	for _, c := range clients {
		if c.CreatedAt.Before(start) || !c.CreatedAt.Before(end) {
			continue
		}
		sale := c.SaleAmount()
		total = total.Add(sale)
		if sale.IsPositive() {
			count++
		}
	}
	return total, count
}

func MonthlyRevenue(sales, paidMRR decimal.Decimal) Revenue {
	return Revenue{
		Sales:      sales,
		Recurrence: paidMRR,
		Total:      sales.Add(paidMRR),
	}
}

// Percent returns numerator/denominator as a whole percentage rounded half
// away from zero. A zero denominator yields 0.
func Percent(numerator, denominator int64) int64 {
	if denominator == 0 {
		return 0
	}
	return int64(math.Round(float64(numerator) * 100 / float64(denominator)))
}

func ChurnRate(churnCount, recurringClients int64) int64 {
	return Percent(churnCount, recurringClients)
}

func ConversionRate(closedLeads, totalLeads int64) int64 {
	return Percent(closedLeads, totalLeads)
}
