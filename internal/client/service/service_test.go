package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gestao/internal/client/domain"
	"github.com/smallbiznis/gestao/internal/client/repository"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"github.com/smallbiznis/gestao/pkg/db"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
	"github.com/smallbiznis/gestao/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest(&domain.Client{})
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Validate: validation.New(),
		Repo:     repository.Provide(),
	})
	return svc, fake
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	created, err := svc.Create(ctx, domain.CreateClientRequest{
		Name:            "  Padaria Sol ",
		Email:           ptr("sol@example.test"),
		IsRecurrent:     true,
		RecurrenceValue: ptr(decimal.NewFromInt(300)),
		RecurrenceDate:  ptr(10),
		ContractEndDate: ptr("2025-12-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Padaria Sol", created.Name)
	assert.Equal(t, domain.StatusInProgress, created.Status)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, got.IsRecurrent)
	assert.True(t, got.RecurringAmount().Equal(decimal.NewFromInt(300)))
	require.NotNil(t, got.ContractEndDate)
	assert.Equal(t, "2025-12-31", got.ContractEndDate.Format(dateLayout))

	other := usercontext.WithUserID(context.Background(), "user-2")
	_, err = svc.Get(other, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	_, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "x", RecurrenceDate: ptr(32)})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "x", Status: "perdido"})
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "x", RecurrenceValue: ptr(decimal.NewFromInt(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrenceValue)

	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestUpdateListDelete(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	first, err := svc.Create(ctx, domain.CreateClientRequest{Name: "A", ContractEndDate: ptr("2025-06-30")})
	require.NoError(t, err)
	fake.Advance(time.Minute)
	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "B", IsRecurrent: true, RecurrenceValue: ptr(decimal.NewFromInt(50))})
	require.NoError(t, err)

	cancelled := domain.StatusCancelled
	updated, err := svc.Update(ctx, first.ID.String(), domain.UpdateClientRequest{
		Status:          &cancelled,
		ContractEndDate: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Nil(t, updated.ContractEndDate)

	all, err := svc.List(ctx, domain.ListClientRequest{})
	require.NoError(t, err)
	require.Len(t, all.Clients, 2)
	assert.Equal(t, "B", all.Clients[0].Name)
	assert.False(t, all.HasMore)

	recurring, err := svc.List(ctx, domain.ListClientRequest{IsRecurrent: ptr(true)})
	require.NoError(t, err)
	assert.Len(t, recurring.Clients, 1)

	_, err = svc.List(ctx, domain.ListClientRequest{Status: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	require.NoError(t, svc.Delete(ctx, first.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID.String()), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "abc"), domain.ErrInvalidID)
}

func TestListPages(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	// The first two share a timestamp so the id breaks the tie.
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := svc.Create(ctx, domain.CreateClientRequest{Name: name})
		require.NoError(t, err)
		if name != "A" {
			fake.Advance(time.Minute)
		}
	}

	var names []string
	req := domain.ListClientRequest{Pagination: pagination.Pagination{PageSize: 2}}
	for i := 0; i < 5; i++ {
		page, err := svc.List(ctx, req)
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Clients), 2)
		for _, c := range page.Clients {
			names = append(names, c.Name)
		}
		if !page.HasMore {
			break
		}
		require.NotEmpty(t, page.NextPageToken)
		req.PageToken = page.NextPageToken
	}
	assert.Equal(t, []string{"E", "D", "C", "B", "A"}, names)
}
