package domain

import "time"

// DuePolicy decides how a recurrence day maps to a due date.
type DuePolicy struct {
	Clamp      bool
	DefaultDay int
	Location   *time.Location
}

func DefaultDuePolicy() DuePolicy {
	return DuePolicy{Clamp: true, DefaultDay: 1, Location: time.UTC}
}

func (p DuePolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// DueDate returns midnight of the day the period's charge is due. A missing
// day falls back to the policy default. With Clamp set a day past the end of
// the month lands on the month's last day, otherwise it rolls over.
func DueDate(period Period, recurrenceDay *int, policy DuePolicy) time.Time {
	day := policy.DefaultDay
	if day < 1 {
		day = 1
	}
	if recurrenceDay != nil && *recurrenceDay > 0 {
		day = *recurrenceDay
	}
	if policy.Clamp {
		if last := DaysIn(period); day > last {
			day = last
		}
	}
	return time.Date(period.Year, time.Month(period.Month), day, 0, 0, 0, 0, policy.location())
}

// EffectiveStatus is the status shown for b at now. Paid and cancelled are
// final. A pending billing turns overdue once now is past midnight of the due
// date in the policy location.
func EffectiveStatus(b Billing, recurrenceDay *int, now time.Time, policy DuePolicy) Status {
	switch b.Status {
	case StatusPaid, StatusCancelled:
		return b.Status
	}
	if b.IsPaid {
		return StatusPaid
	}

	due := DueDate(Period{Month: b.Month, Year: b.Year}, recurrenceDay, policy)
	if now.In(policy.location()).After(due) {
		return StatusOverdue
	}
	return StatusPending
}

// Annotate builds the read view of b.
func Annotate(b Billing, client *ClientSummary, now time.Time, policy DuePolicy) BillingView {
	var day *int
	if client != nil {
		day = client.RecurrenceDate
	}
	return BillingView{
		Billing:      b,
		Status:       EffectiveStatus(b, day, now, policy),
		StoredStatus: b.Status,
		DueDate:      DueDate(Period{Month: b.Month, Year: b.Year}, day, policy),
		Client:       client,
	}
}
