package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/gestao/internal/client/domain"
)

// Eligible reports whether client should receive a new billing for period.
// billed holds the clients that already have a billing for the period.
func Eligible(client clientdomain.Client, period Period, billed map[snowflake.ID]struct{}, loc *time.Location) bool {
	if !client.IsRecurrent || client.RecurrenceValue == nil {
		return false
	}
	if client.Status == clientdomain.StatusCancelled {
		return false
	}
	if _, ok := billed[client.ID]; ok {
		return false
	}
	return activeDuring(client, period, loc)
}

// activeDuring checks the date window: created no later than the period's last
// day and a contract end, if any, not before its first day.
func activeDuring(client clientdomain.Client, period Period, loc *time.Location) bool {
	if !client.CreatedAt.Before(NextPeriodStart(period, loc)) {
		return false
	}
	if client.ContractEndDate != nil {
		end := civilDate(*client.ContractEndDate)
		if end.Before(civilDate(FirstDayOf(period, loc))) {
			return false
		}
	}
	return true
}

// civilDate drops the clock and zone so calendar dates compare as dates.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildDrafts turns the eligible clients into pending billings owned by userID.
func BuildDrafts(userID string, clients []clientdomain.Client, period Period, billed map[snowflake.ID]struct{}, loc *time.Location, nextID func() snowflake.ID, now time.Time) []*Billing {
	drafts := make([]*Billing, 0, len(clients))
	seen := make(map[snowflake.ID]struct{}, len(clients))
	for _, client := range clients {
		if client.UserID != userID {
			continue
		}
		if _, dup := seen[client.ID]; dup {
			continue
		}
		if !Eligible(client, period, billed, loc) {
			continue
		}
		seen[client.ID] = struct{}{}
		drafts = append(drafts, &Billing{
			ID:        nextID(),
			UserID:    userID,
			ClientID:  client.ID,
			Month:     period.Month,
			Year:      period.Year,
			Amount:    client.RecurringAmount(),
			IsPaid:    false,
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return drafts
}

// VisibleForPeriod reports whether client belongs on the period's recurring
// list: recurrent, not cancelled, inside the date window and without a
// cancelled billing for the period.
func VisibleForPeriod(client clientdomain.Client, period Period, cancelled map[snowflake.ID]struct{}, loc *time.Location) bool {
	if !client.IsRecurrent || client.RecurrenceValue == nil {
		return false
	}
	if client.Status == clientdomain.StatusCancelled {
		return false
	}
	if _, ok := cancelled[client.ID]; ok {
		return false
	}
	return activeDuring(client, period, loc)
}
