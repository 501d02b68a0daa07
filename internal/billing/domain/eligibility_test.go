package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/gestao/internal/client/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = Period{Month: 3, Year: 2025}

func recurrentClient(id snowflake.ID, createdAt time.Time) clientdomain.Client {
	value := decimal.NewFromInt(300)
	return clientdomain.Client{
		ID:              id,
		UserID:          "user-1",
		Name:            "client",
		IsRecurrent:     true,
		RecurrenceValue: &value,
		Status:          clientdomain.StatusInProgress,
		CreatedAt:       createdAt,
	}
}

func dateOnly(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEligibleCreationBoundary(t *testing.T) {
	lastDay := recurrentClient(1, time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC))
	nextMonth := recurrentClient(2, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, Eligible(lastDay, march, nil, time.UTC))
	assert.False(t, Eligible(nextMonth, march, nil, time.UTC))
}

func TestEligibleContractEndBoundary(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	endsFirstDay := recurrentClient(1, created)
	endsFirstDay.ContractEndDate = dateOnly(2025, 3, 1)
	assert.True(t, Eligible(endsFirstDay, march, nil, time.UTC))

	endedDayBefore := recurrentClient(2, created)
	endedDayBefore.ContractEndDate = dateOnly(2025, 2, 28)
	assert.False(t, Eligible(endedDayBefore, march, nil, time.UTC))
}

func TestEligibleExclusions(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	notRecurrent := recurrentClient(1, created)
	notRecurrent.IsRecurrent = false
	assert.False(t, Eligible(notRecurrent, march, nil, time.UTC))

	noValue := recurrentClient(2, created)
	noValue.RecurrenceValue = nil
	assert.False(t, Eligible(noValue, march, nil, time.UTC))

	cancelled := recurrentClient(3, created)
	cancelled.Status = clientdomain.StatusCancelled
	assert.False(t, Eligible(cancelled, march, nil, time.UTC))

	billed := recurrentClient(4, created)
	assert.False(t, Eligible(billed, march, map[snowflake.ID]struct{}{4: {}}, time.UTC))

	zeroValue := recurrentClient(5, created)
	zero := decimal.Zero
	zeroValue.RecurrenceValue = &zero
	assert.True(t, Eligible(zeroValue, march, nil, time.UTC))
}

func TestBuildDrafts(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	foreign := recurrentClient(3, created)
	foreign.UserID = "user-2"

	clients := []clientdomain.Client{
		recurrentClient(1, created),
		recurrentClient(2, created),
		recurrentClient(1, created),
		foreign,
	}
	var next snowflake.ID = 100
	nextID := func() snowflake.ID {
		next++
		return next
	}

	drafts := BuildDrafts("user-1", clients, march, map[snowflake.ID]struct{}{2: {}}, time.UTC, nextID, now)
	require.Len(t, drafts, 1)

	d := drafts[0]
	assert.Equal(t, snowflake.ID(101), d.ID)
	assert.Equal(t, snowflake.ID(1), d.ClientID)
	assert.Equal(t, "user-1", d.UserID)
	assert.Equal(t, StatusPending, d.Status)
	assert.False(t, d.IsPaid)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 3, d.Month)
	assert.Equal(t, 2025, d.Year)
	assert.Equal(t, now, d.CreatedAt)
}

func TestVisibleForPeriod(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := recurrentClient(1, created)

	assert.True(t, VisibleForPeriod(c, march, nil, time.UTC))
	assert.False(t, VisibleForPeriod(c, march, map[snowflake.ID]struct{}{1: {}}, time.UTC))
}
