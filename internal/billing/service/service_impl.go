package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/gestao/internal/billing/domain"
	clientdomain "github.com/smallbiznis/gestao/internal/client/domain"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/config"
	"github.com/smallbiznis/gestao/internal/lock"
	"github.com/smallbiznis/gestao/internal/observability/metrics"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Validate   *validator.Validate
	Policy     *config.BillingPolicyHolder
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
	Lock       *lock.GenerationLock `optional:"true"`
	Metrics    *metrics.Metrics     `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	validate   *validator.Validate
	policy     *config.BillingPolicyHolder
	repo       domain.Repository
	clientrepo clientdomain.Repository
	lock       *lock.GenerationLock
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		validate:   p.Validate,
		policy:     p.Policy,
		repo:       p.Repo,
		clientrepo: p.ClientRepo,
		lock:       p.Lock,
		metrics:    p.Metrics,
	}
}

// Generate creates the missing pending billings for the period. Rows that
// already exist are left untouched, so repeated calls report zero.
func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.GenerateResult{}, domain.ErrUnauthenticated
	}
	period := domain.Period{Month: req.Month, Year: req.Year}
	if err := period.Validate(); err != nil {
		return domain.GenerateResult{}, err
	}

	release, acquired, err := s.lock.AcquirePeriod(ctx, userID, period.Month, period.Year)
	if err != nil {
		s.log.Warn("generation lock unavailable, relying on unique constraint", zap.Error(err))
		acquired = true
	}
	if !acquired {
		s.log.Warn("generation lock still held after waiting, period may be read before the holder commits",
			zap.Int("month", period.Month),
			zap.Int("year", period.Year),
		)
		s.metrics.IncGenerationRun("contended")
		return domain.GenerateResult{}, nil
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("release generation lock", zap.Error(err))
		}
	}()

	created, err := s.generate(ctx, userID, period)
	if err != nil {
		s.metrics.IncGenerationRun("error")
		return domain.GenerateResult{}, err
	}
	s.metrics.IncGenerationRun("ok")
	s.metrics.AddBillingsGenerated(created)

	if created > 0 {
		s.log.Info("recurring billings generated",
			zap.Int("month", period.Month),
			zap.Int("year", period.Year),
			zap.Int("created", created),
		)
	}
	return domain.GenerateResult{Created: created}, nil
}

func (s *Service) generate(ctx context.Context, userID string, period domain.Period) (int, error) {
	clients, err := s.clientrepo.ListRecurring(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	billedIDs, err := s.repo.ListClientIDsByPeriod(ctx, s.db, userID, period, "")
	if err != nil {
		return 0, err
	}

	billed := make(map[snowflake.ID]struct{}, len(billedIDs))
	for _, id := range billedIDs {
		billed[id] = struct{}{}
	}
	candidates := make([]clientdomain.Client, 0, len(clients))
	for _, c := range clients {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	drafts := domain.BuildDrafts(userID, candidates, period, billed, s.location(), s.genID.Generate, s.clock.Now())
	if len(drafts) == 0 {
		return 0, nil
	}

	inserted, err := s.repo.InsertIgnoreConflicts(ctx, s.db, drafts)
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

// ListPeriod generates the period's missing billings, then returns every
// billing of the period with its effective status.
func (s *Service) ListPeriod(ctx context.Context, req domain.ListPeriodRequest) ([]domain.BillingView, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	period := domain.Period{Month: req.Month, Year: req.Year}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.Generate(ctx, domain.GenerateRequest{Month: period.Month, Year: period.Year}); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListWithClients(ctx, s.db, userID, domain.ListBillingFilter{Period: &period})
	if err != nil {
		return nil, err
	}
	return s.annotate(rows), nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.BillingView, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	var filter domain.ListBillingFilter
	if req.Month != 0 && req.Year != 0 {
		period := domain.Period{Month: req.Month, Year: req.Year}
		if err := period.Validate(); err != nil {
			return nil, err
		}
		filter.Period = &period
	}

	rows, err := s.repo.ListWithClients(ctx, s.db, userID, filter)
	if err != nil {
		return nil, err
	}
	return s.annotate(rows), nil
}

func (s *Service) ListOutstanding(ctx context.Context) ([]domain.BillingView, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	rows, err := s.repo.ListOutstanding(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.annotate(rows), nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.BillingView, error) {
	return s.transition(ctx, id, domain.StatusPaid, func(b *domain.Billing, now time.Time) (map[string]any, error) {
		switch {
		case b.Status == domain.StatusCancelled:
			return nil, domain.ErrCancelledBilling
		case b.Status == domain.StatusPaid && b.IsPaid:
			return nil, nil
		}
		return map[string]any{
			"status":     domain.StatusPaid,
			"is_paid":    true,
			"paid_at":    now,
			"updated_at": now,
		}, nil
	})
}

func (s *Service) MarkUnpaid(ctx context.Context, id string) (domain.BillingView, error) {
	return s.transition(ctx, id, domain.StatusPending, func(b *domain.Billing, now time.Time) (map[string]any, error) {
		switch {
		case b.Status == domain.StatusCancelled:
			return nil, domain.ErrCancelledBilling
		case b.Status == domain.StatusPending && !b.IsPaid && b.PaidAt == nil:
			return nil, nil
		}
		return map[string]any{
			"status":     domain.StatusPending,
			"is_paid":    false,
			"paid_at":    nil,
			"updated_at": now,
		}, nil
	})
}

// Cancel records the billing as churn. Cancelling twice keeps the first
// cancellation time.
func (s *Service) Cancel(ctx context.Context, id string) (domain.BillingView, error) {
	return s.transition(ctx, id, domain.StatusCancelled, func(b *domain.Billing, now time.Time) (map[string]any, error) {
		if b.Status == domain.StatusCancelled {
			return nil, nil
		}
		return map[string]any{
			"status":       domain.StatusCancelled,
			"cancelled_at": now,
			"is_paid":      false,
			"updated_at":   now,
		}, nil
	})
}

func (s *Service) UpdateNotes(ctx context.Context, id string, req domain.UpdateNotesRequest) (domain.BillingView, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return domain.BillingView{}, err
	}
	var notes *string
	if req.Notes != nil {
		if v := strings.TrimSpace(*req.Notes); v != "" {
			notes = &v
		}
	}

	return s.transition(ctx, id, "", func(_ *domain.Billing, now time.Time) (map[string]any, error) {
		return map[string]any{
			"notes":      notes,
			"updated_at": now,
		}, nil
	})
}

func (s *Service) Summarize(views []domain.BillingView) domain.Summary {
	return domain.Summarize(views)
}

func (s *Service) RecurringClientsForMonth(ctx context.Context, period domain.Period) ([]domain.RecurringClient, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	clients, err := s.clientrepo.ListRecurring(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	cancelledIDs, err := s.repo.ListClientIDsByPeriod(ctx, s.db, userID, period, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	cancelled := make(map[snowflake.ID]struct{}, len(cancelledIDs))
	for _, id := range cancelledIDs {
		cancelled[id] = struct{}{}
	}

	loc := s.location()
	out := make([]domain.RecurringClient, 0, len(clients))
	for _, c := range clients {
		if c == nil || !domain.VisibleForPeriod(*c, period, cancelled, loc) {
			continue
		}
		item := domain.RecurringClient{
			ID:              c.ID.String(),
			Name:            c.Name,
			Email:           c.Email,
			Phone:           c.Phone,
			RecurrenceValue: c.RecurringAmount().StringFixed(2),
			RecurrenceDate:  c.RecurrenceDate,
			Status:          string(c.Status),
			CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if c.ContractEndDate != nil {
			end := c.ContractEndDate.Format(dateLayout)
			item.ContractEndDate = &end
		}
		out = append(out, item)
	}
	return out, nil
}

type patchFunc func(b *domain.Billing, now time.Time) (map[string]any, error)

// transition loads the caller's billing, applies the patch built by fn and
// returns the refreshed view. A nil patch means nothing to change.
func (s *Service) transition(ctx context.Context, id string, to domain.Status, fn patchFunc) (domain.BillingView, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.BillingView{}, domain.ErrUnauthenticated
	}
	billingID, err := parseID(id)
	if err != nil {
		return domain.BillingView{}, err
	}

	billing, err := s.repo.FindByID(ctx, s.db, userID, billingID)
	if err != nil {
		return domain.BillingView{}, err
	}
	if billing == nil {
		return domain.BillingView{}, domain.ErrNotFound
	}

	patch, err := fn(billing, s.clock.Now())
	if err != nil {
		return domain.BillingView{}, err
	}
	if len(patch) > 0 {
		affected, err := s.repo.UpdateFields(ctx, s.db, userID, billingID, patch)
		if err != nil {
			return domain.BillingView{}, err
		}
		if affected == 0 {
			return domain.BillingView{}, domain.ErrNotFound
		}
		if to != "" {
			s.metrics.IncBillingTransition(string(to))
			s.log.Info("billing status changed",
				zap.String("billing_id", billingID.String()),
				zap.String("from", string(billing.Status)),
				zap.String("to", string(to)),
			)
		}
	}

	row, err := s.repo.FindWithClient(ctx, s.db, userID, billingID)
	if err != nil {
		return domain.BillingView{}, err
	}
	if row == nil {
		return domain.BillingView{}, domain.ErrNotFound
	}
	return domain.Annotate(row.Billing, row.Summary(), s.clock.Now(), s.duePolicy()), nil
}

func (s *Service) annotate(rows []domain.BillingWithClient) []domain.BillingView {
	now := s.clock.Now()
	policy := s.duePolicy()
	views := make([]domain.BillingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, domain.Annotate(row.Billing, row.Summary(), now, policy))
	}
	return views
}

func (s *Service) duePolicy() domain.DuePolicy {
	policy := s.policy.Get()
	return domain.DuePolicy{
		Clamp:      policy.ClampDueDay,
		DefaultDay: policy.DefaultDueDay,
		Location:   policy.Location(),
	}
}

func (s *Service) location() *time.Location {
	return s.policy.Get().Location()
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
