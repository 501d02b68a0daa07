package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/goal/domain"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"github.com/smallbiznis/gestao/pkg/db"
	"github.com/smallbiznis/gestao/pkg/repository"
	"github.com/smallbiznis/gestao/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn, err := db.NewTest(&domain.Goal{})
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)),
		Validate: validation.New(),
		Store:    repository.ProvideStore[domain.Goal](conn),
	})
}

func TestEnsureRevenueGoalIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	first, err := svc.EnsureRevenueGoal(ctx, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.RevenueGoalTitle, first.Title)
	assert.True(t, first.TargetValue.IsZero())
	assert.Equal(t, domain.TypeRevenue, first.Type)

	second, err := svc.EnsureRevenueGoal(ctx, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	goals, err := svc.ListByMonth(ctx, 3, 2025)
	require.NoError(t, err)
	assert.Len(t, goals, 1)

	other := usercontext.WithUserID(context.Background(), "user-2")
	theirs, err := svc.EnsureRevenueGoal(other, 3, 2025)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, theirs.ID)

	_, err = svc.EnsureRevenueGoal(ctx, 13, 2025)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestCreateSecondRevenueGoalConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	_, err := svc.EnsureRevenueGoal(ctx, 3, 2025)
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateGoalRequest{
		Title: "Outra", TargetValue: decimal.NewFromInt(10), Type: domain.TypeRevenue, Month: 3, Year: 2025,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	custom, err := svc.Create(ctx, domain.CreateGoalRequest{
		Title: "Novos clientes", TargetValue: decimal.NewFromInt(10), Month: 3, Year: 2025,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeCustom, custom.Type)

	_, err = svc.Create(ctx, domain.CreateGoalRequest{
		Title: "Mais clientes", TargetValue: decimal.NewFromInt(5), Month: 3, Year: 2025,
	})
	require.NoError(t, err)
}

func TestUpdateAndRevenueGoal(t *testing.T) {
	svc := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	none, err := svc.RevenueGoal(ctx, 4, 2025)
	require.NoError(t, err)
	assert.Nil(t, none)

	goal, err := svc.EnsureRevenueGoal(ctx, 4, 2025)
	require.NoError(t, err)

	target := decimal.NewFromInt(5000)
	updated, err := svc.Update(ctx, goal.ID.String(), domain.UpdateGoalRequest{TargetValue: &target})
	require.NoError(t, err)
	assert.True(t, updated.TargetValue.Equal(target))

	found, err := svc.RevenueGoal(ctx, 4, 2025)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, goal.ID, found.ID)

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, goal.ID.String(), domain.UpdateGoalRequest{TargetValue: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidTargetValue)
}

func TestListOrdersByPeriodDescending(t *testing.T) {
	svc := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	for _, p := range [][2]int{{1, 2025}, {11, 2024}, {3, 2025}} {
		_, err := svc.EnsureRevenueGoal(ctx, p[0], p[1])
		require.NoError(t, err)
	}

	goals, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, [2]int{3, 2025}, [2]int{goals[0].Month, goals[0].Year})
	assert.Equal(t, [2]int{1, 2025}, [2]int{goals[1].Month, goals[1].Year})
	assert.Equal(t, [2]int{11, 2024}, [2]int{goals[2].Month, goals[2].Year})
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	goal, err := svc.EnsureRevenueGoal(ctx, 3, 2025)
	require.NoError(t, err)

	other := usercontext.WithUserID(context.Background(), "user-2")
	assert.ErrorIs(t, svc.Delete(other, goal.ID.String()), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, goal.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, goal.ID.String()), domain.ErrNotFound)
}
