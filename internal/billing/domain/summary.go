package domain

import "github.com/shopspring/decimal"

// Summary holds the per-period counters shown above the billing list.
type Summary struct {
	Total        int             `json:"total"`
	Paid         int             `json:"paid"`
	Pending      int             `json:"pending"`
	Overdue      int             `json:"overdue"`
	Cancelled    int             `json:"cancelled"`
	PaidValue    decimal.Decimal `json:"paid_value"`
	PendingValue decimal.Decimal `json:"pending_value"`
}

// Summarize counts views by effective status. Pending value covers both
// pending and overdue billings.
func Summarize(views []BillingView) Summary {
	summary := Summary{
		Total:        len(views),
		PaidValue:    decimal.Zero,
		PendingValue: decimal.Zero,
	}
	for _, v := range views {
		switch v.Status {
		case StatusPaid:
			summary.Paid++
			summary.PaidValue = summary.PaidValue.Add(v.Amount)
		case StatusPending:
			summary.Pending++
			summary.PendingValue = summary.PendingValue.Add(v.Amount)
		case StatusOverdue:
			summary.Overdue++
			summary.PendingValue = summary.PendingValue.Add(v.Amount)
		case StatusCancelled:
			summary.Cancelled++
		}
	}
	return summary
}
