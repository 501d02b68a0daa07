package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/lead/domain"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"github.com/smallbiznis/gestao/pkg/db"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
	"github.com/smallbiznis/gestao/pkg/repository"
	"github.com/smallbiznis/gestao/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest(&domain.Lead{})
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	// Wednesday
	fake := clock.NewFakeClock(time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Validate: validation.New(),
		Store:    repository.ProvideStore[domain.Lead](conn),
	})
	return svc, fake
}

func ptr[T any](v T) *T { return &v }

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{
		Name: " Ana ",
		Tags: []string{"vip", " vip", "", "loja"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", lead.Name)
	assert.Equal(t, domain.SourceOther, lead.Source)
	assert.Equal(t, domain.StageContacted, lead.Stage)
	assert.Equal(t, []string{"vip", "loja"}, []string(lead.Tags))

	got, err := svc.Get(ctx, lead.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "loja"}, []string(got.Tags))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	_, err := svc.Create(context.Background(), domain.CreateLeadRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Create(ctx, domain.CreateLeadRequest{Name: "x", Stage: "perdido"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.Create(ctx, domain.CreateLeadRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateLeadRequest{Name: "x", EstimatedValue: ptr(decimal.NewFromInt(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidEstimatedValue)
}

func TestUpdateMovesStage(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Bruno"})
	require.NoError(t, err)

	fake.Advance(time.Hour)
	updated, err := svc.Update(ctx, lead.ID.String(), domain.UpdateLeadRequest{
		Stage:          ptr(domain.StageProposalSent),
		EstimatedValue: ptr(decimal.RequireFromString("1500.50")),
		Tags:           []string{"retorno"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StageProposalSent, updated.Stage)
	require.NotNil(t, updated.EstimatedValue)
	assert.True(t, updated.EstimatedValue.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, []string{"retorno"}, []string(updated.Tags))

	other := usercontext.WithUserID(context.Background(), "user-2")
	_, err = svc.Update(other, lead.ID.String(), domain.UpdateLeadRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, "abc", domain.UpdateLeadRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListFiltersByStage(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	for _, stage := range []domain.Stage{domain.StageContacted, domain.StageClosedWon, domain.StageClosedWon} {
		_, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "lead", Stage: stage})
		require.NoError(t, err)
		fake.Advance(time.Minute)
	}

	all, err := svc.List(ctx, domain.ListLeadRequest{})
	require.NoError(t, err)
	require.Len(t, all.Leads, 3)
	assert.True(t, all.Leads[0].CreatedAt.After(all.Leads[2].CreatedAt))
	assert.False(t, all.HasMore)

	won, err := svc.List(ctx, domain.ListLeadRequest{Stage: string(domain.StageClosedWon)})
	require.NoError(t, err)
	assert.Len(t, won.Leads, 2)

	first, err := svc.List(ctx, domain.ListLeadRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Leads, 2)
	require.True(t, first.HasMore)
	rest, err := svc.List(ctx, domain.ListLeadRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, rest.Leads, 1)
	assert.False(t, rest.HasMore)
	assert.Equal(t, all.Leads[2].ID, rest.Leads[0].ID)

	_, err = svc.List(ctx, domain.ListLeadRequest{Stage: "perdido"})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)

	counts, err := svc.StageCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[domain.StageContacted])
	assert.Equal(t, int64(2), counts[domain.StageClosedWon])
	assert.Equal(t, int64(0), counts[domain.StageWarming])
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Carla"})
	require.NoError(t, err)

	other := usercontext.WithUserID(context.Background(), "user-2")
	assert.ErrorIs(t, svc.Delete(other, lead.ID.String()), domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, lead.ID.String()))
	_, err = svc.Get(ctx, lead.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := usercontext.WithUserID(context.Background(), "user-1")

	// Sunday of the same week, then Wednesday.
	fake.Set(time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC))
	_, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "domingo", Source: domain.SourceInstagram})
	require.NoError(t, err)
	fake.Set(time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC))
	_, err = svc.Create(ctx, domain.CreateLeadRequest{Name: "sabado anterior"})
	require.NoError(t, err)
	fake.Set(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC))
	_, err = svc.Create(ctx, domain.CreateLeadRequest{Name: "hoje", Source: domain.SourceInstagram, Stage: domain.StageClosedWon})
	require.NoError(t, err)

	other := usercontext.WithUserID(context.Background(), "user-2")
	_, err = svc.Create(other, domain.CreateLeadRequest{Name: "outro usuario"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.CreatedToday)
	assert.Equal(t, int64(2), stats.BySource[domain.SourceInstagram])
	assert.Equal(t, int64(1), stats.BySource[domain.SourceOther])
	assert.Equal(t, int64(1), stats.ByStage[domain.StageClosedWon])
	assert.Equal(t, map[string]int64{"2025-03-09": 1, "2025-03-12": 1}, stats.CreatedThisWeek)
	require.Len(t, stats.Recent, 3)
	assert.Equal(t, "hoje", stats.Recent[0].Name)
}
