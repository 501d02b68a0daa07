package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/gestao/internal/billing/domain"
	"github.com/smallbiznis/gestao/internal/billingreport/domain"
	clientdomain "github.com/smallbiznis/gestao/internal/client/domain"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/config"
	goaldomain "github.com/smallbiznis/gestao/internal/goal/domain"
	leaddomain "github.com/smallbiznis/gestao/internal/lead/domain"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Policy      *config.BillingPolicyHolder
	BillingRepo billingdomain.Repository
	ClientRepo  clientdomain.Repository
	Leads       leaddomain.Service
	Goals       goaldomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	policy      *config.BillingPolicyHolder
	billingrepo billingdomain.Repository
	clientrepo  clientdomain.Repository
	leads       leaddomain.Service
	goals       goaldomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("billingreport.service"),
		clock:       p.Clock,
		policy:      p.Policy,
		billingrepo: p.BillingRepo,
		clientrepo:  p.ClientRepo,
		leads:       p.Leads,
		goals:       p.Goals,
	}
}

func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Dashboard{}, domain.ErrUnauthenticated
	}

	policy := s.policy.Get()
	loc := policy.Location()
	now := s.clock.Now()
	period := billingdomain.PeriodOf(now, loc)

	stats, err := s.leads.Stats(ctx, now, loc)
	if err != nil {
		return domain.Dashboard{}, err
	}

	clients, err := s.clientrepo.List(ctx, s.db, userID, clientdomain.ListClientFilter{}, nil)
	if err != nil {
		return domain.Dashboard{}, err
	}
	rows, err := s.billingrepo.ListWithClients(ctx, s.db, userID, billingdomain.ListBillingFilter{Period: &period})
	if err != nil {
		return domain.Dashboard{}, err
	}

	dashboard := domain.Dashboard{
		Month:             period.Month,
		Year:              period.Year,
		LeadsToday:        stats.CreatedToday,
		TotalLeads:        stats.Total,
		StageCounts:       stats.ByStage,
		SourceCounts:      stats.BySource,
		WeekLeads:         stats.CreatedThisWeek,
		RecentLeads:       stats.Recent,
		ConversionRate:    domain.ConversionRate(stats.ByStage[leaddomain.Stage(policy.FinalLeadStage)], stats.Total),
		StatusCounts:      map[clientdomain.Status]int64{clientdomain.StatusDelivered: 0, clientdomain.StatusInProgress: 0, clientdomain.StatusCancelled: 0},
		MonthlyRecurrence: decimal.Zero,
		TotalSalesValue:   decimal.Zero,
	}

	flat := make([]clientdomain.Client, 0, len(clients))
	for _, c := range clients {
		flat = append(flat, *c)
		dashboard.TotalClients++
		dashboard.StatusCounts[c.Status]++
		dashboard.TotalSalesValue = dashboard.TotalSalesValue.Add(c.SaleAmount())
		if !c.IsRecurrent {
			continue
		}
		dashboard.RecurringClients++
		if c.Status != clientdomain.StatusCancelled {
			dashboard.MonthlyRecurrence = dashboard.MonthlyRecurrence.Add(c.RecurringAmount())
		}
	}
	dashboard.MonthRevenue, dashboard.SalesCount = domain.SalesOf(flat, period, loc)

	billings, views := s.split(rows, now)
	dashboard.PaidMRR = domain.PaidMRR(billings)
	dashboard.TotalMonthRevenue = dashboard.MonthRevenue.Add(dashboard.PaidMRR)
	dashboard.PendingAmount, dashboard.PendingCount = domain.PendingAmount(views)

	churn := domain.ChurnOf(billings)
	dashboard.ChurnCount = churn.Count
	dashboard.ChurnValue = churn.Value
	dashboard.ChurnRate = domain.ChurnRate(churn.Count, dashboard.RecurringClients)

	goal, err := s.goals.RevenueGoal(ctx, period.Month, period.Year)
	if err != nil {
		return domain.Dashboard{}, err
	}
	if goal != nil {
		dashboard.MonthGoal = &goaldomain.GoalProgress{
			Goal:     *goal,
			Achieved: dashboard.TotalMonthRevenue,
			Percent:  goaldomain.Progress(dashboard.TotalMonthRevenue, goal.TargetValue),
		}
	}

	s.log.Debug("dashboard computed",
		zap.Int("month", period.Month),
		zap.Int("year", period.Year),
		zap.Int("billings", len(rows)),
		zap.Int("clients", len(clients)),
	)
	return dashboard, nil
}

func (s *Service) MonthlyRevenue(ctx context.Context, period billingdomain.Period) (domain.Revenue, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Revenue{}, domain.ErrUnauthenticated
	}
	if err := period.Validate(); err != nil {
		return domain.Revenue{}, err
	}

	loc := s.policy.Get().Location()
	from := billingdomain.FirstDayOf(period, loc).UTC()
	to := billingdomain.NextPeriodStart(period, loc).UTC()
	clients, err := s.clientrepo.List(ctx, s.db, userID, clientdomain.ListClientFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
	}, nil)
	if err != nil {
		return domain.Revenue{}, err
	}
	flat := make([]clientdomain.Client, 0, len(clients))
	for _, c := range clients {
		flat = append(flat, *c)
	}
	sales, _ := domain.SalesOf(flat, period, loc)

	billings, err := s.periodBillings(ctx, userID, period)
	if err != nil {
		return domain.Revenue{}, err
	}
	return domain.MonthlyRevenue(sales, domain.PaidMRR(billings)), nil
}

func (s *Service) Churn(ctx context.Context, period billingdomain.Period) (domain.Churn, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Churn{}, domain.ErrUnauthenticated
	}
	if err := period.Validate(); err != nil {
		return domain.Churn{}, err
	}
	billings, err := s.periodBillings(ctx, userID, period)
	if err != nil {
		return domain.Churn{}, err
	}
	return domain.ChurnOf(billings), nil
}

func (s *Service) PaidMRR(ctx context.Context, period billingdomain.Period) (decimal.Decimal, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return decimal.Zero, domain.ErrUnauthenticated
	}
	if err := period.Validate(); err != nil {
		return decimal.Zero, err
	}
	billings, err := s.periodBillings(ctx, userID, period)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.PaidMRR(billings), nil
}

func (s *Service) periodBillings(ctx context.Context, userID string, period billingdomain.Period) ([]billingdomain.Billing, error) {
	rows, err := s.billingrepo.ListWithClients(ctx, s.db, userID, billingdomain.ListBillingFilter{Period: &period})
	if err != nil {
		return nil, err
	}
	billings := make([]billingdomain.Billing, 0, len(rows))
	for _, row := range rows {
		billings = append(billings, row.Billing)
	}
	return billings, nil
}

func (s *Service) split(rows []billingdomain.BillingWithClient, now time.Time) ([]billingdomain.Billing, []billingdomain.BillingView) {
	policy := s.policy.Get()
	due := billingdomain.DuePolicy{
		Clamp:      policy.ClampDueDay,
		DefaultDay: policy.DefaultDueDay,
		Location:   policy.Location(),
	}
	billings := make([]billingdomain.Billing, 0, len(rows))
	views := make([]billingdomain.BillingView, 0, len(rows))
	for _, row := range rows {
		billings = append(billings, row.Billing)
		views = append(views, billingdomain.Annotate(row.Billing, row.Summary(), now, due))
	}
	return billings, views
}
