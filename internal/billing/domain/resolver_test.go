package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestEffectiveStatusOverdueDerivation(t *testing.T) {
	policy := DefaultDuePolicy()
	b := Billing{Month: 3, Year: 2025, Status: StatusPending}

	march9 := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	dueMidnight := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	march10 := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusPending, EffectiveStatus(b, intPtr(10), march9, policy))
	assert.Equal(t, StatusPending, EffectiveStatus(b, intPtr(10), dueMidnight, policy))
	assert.Equal(t, StatusOverdue, EffectiveStatus(b, intPtr(10), dueMidnight.Add(time.Second), policy))
	assert.Equal(t, StatusOverdue, EffectiveStatus(b, intPtr(10), march10, policy))
}

func TestEffectiveStatusStickyStates(t *testing.T) {
	policy := DefaultDuePolicy()
	farFuture := time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, status := range []Status{StatusPaid, StatusCancelled} {
		b := Billing{Month: 1, Year: 2024, Status: status}
		assert.Equal(t, status, EffectiveStatus(b, intPtr(5), farFuture, policy))
	}

	legacyPaid := Billing{Month: 1, Year: 2024, Status: StatusPending, IsPaid: true}
	assert.Equal(t, StatusPaid, EffectiveStatus(legacyPaid, nil, farFuture, policy))
}

func TestEffectiveStatusDefaultsToDayOne(t *testing.T) {
	b := Billing{Month: 3, Year: 2025, Status: StatusPending}
	policy := DefaultDuePolicy()

	assert.Equal(t, StatusPending, EffectiveStatus(b, nil, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), policy))
	assert.Equal(t, StatusOverdue, EffectiveStatus(b, nil, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), policy))
	assert.Equal(t, StatusOverdue, EffectiveStatus(b, intPtr(0), time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), policy))
}

func TestDueDateClamp(t *testing.T) {
	feb := Period{Month: 2, Year: 2025}
	leapFeb := Period{Month: 2, Year: 2024}

	clamped := DefaultDuePolicy()
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), DueDate(feb, intPtr(31), clamped))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), DueDate(leapFeb, intPtr(30), clamped))
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), DueDate(Period{Month: 4, Year: 2025}, intPtr(31), clamped))

	overflow := clamped
	overflow.Clamp = false
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), DueDate(feb, intPtr(31), overflow))
}

func TestEffectiveStatusUsesPolicyLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	policy := DuePolicy{Clamp: true, DefaultDay: 1, Location: loc}
	b := Billing{Month: 3, Year: 2025, Status: StatusPending}

	// 02:00 UTC on March 10 is still March 9 at UTC-3.
	now := time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, StatusPending, EffectiveStatus(b, intPtr(10), now, policy))
	assert.Equal(t, StatusOverdue, EffectiveStatus(b, intPtr(10), now, DefaultDuePolicy()))
}

func TestAnnotateKeepsStoredStatus(t *testing.T) {
	b := Billing{Month: 3, Year: 2025, Status: StatusPending}
	client := &ClientSummary{Name: "Ana", RecurrenceDate: intPtr(10)}

	view := Annotate(b, client, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), DefaultDuePolicy())
	assert.Equal(t, StatusOverdue, view.Status)
	assert.Equal(t, StatusPending, view.StoredStatus)
	assert.Equal(t, StatusPending, view.Billing.Status)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), view.DueDate)
}

func TestPeriodValidate(t *testing.T) {
	assert.NoError(t, Period{Month: 12, Year: 2025}.Validate())
	assert.ErrorIs(t, Period{Month: 0, Year: 2025}.Validate(), ErrInvalidMonth)
	assert.ErrorIs(t, Period{Month: 13, Year: 2025}.Validate(), ErrInvalidMonth)
	assert.ErrorIs(t, Period{Month: 1, Year: 0}.Validate(), ErrInvalidYear)
}

func TestPeriodBounds(t *testing.T) {
	p := Period{Month: 2, Year: 2024}
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), FirstDayOf(p, nil))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), LastDayOf(p, nil))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), NextPeriodStart(p, nil))
	assert.Equal(t, Period{Month: 1, Year: 2025}, PeriodOf(NextPeriodStart(Period{Month: 12, Year: 2024}, nil), nil))

	loc := time.FixedZone("BRT", -3*60*60)
	assert.Equal(t, Period{Month: 2, Year: 2025}, PeriodOf(time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC), loc))
}
