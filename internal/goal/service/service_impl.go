package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/goal/domain"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"github.com/smallbiznis/gestao/pkg/db"
	"github.com/smallbiznis/gestao/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Validate *validator.Validate
	Store    repository.Repository[domain.Goal]
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	validate *validator.Validate
	store    repository.Repository[domain.Goal]
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("goal.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		validate: p.Validate,
		store:    p.Store,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateGoalRequest) (domain.Goal, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Goal{}, domain.ErrUnauthenticated
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return domain.Goal{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Goal{}, domain.ErrInvalidTitle
	}
	if req.TargetValue.IsNegative() {
		return domain.Goal{}, domain.ErrInvalidTargetValue
	}
	goalType := req.Type
	if goalType == "" {
		goalType = domain.TypeCustom
	}

	now := s.clock.Now()
	goal := domain.Goal{
		ID:           s.genID.Generate(),
		UserID:       userID,
		Title:        title,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Type:         goalType,
		Month:        req.Month,
		Year:         req.Year,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, &goal); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Goal{}, domain.ErrConflict
		}
		return domain.Goal{}, err
	}

	s.log.Info("goal created",
		zap.String("goal_id", goal.ID.String()),
		zap.String("type", string(goal.Type)),
		zap.Int("month", goal.Month),
		zap.Int("year", goal.Year),
	)
	return goal, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateGoalRequest) (domain.Goal, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Goal{}, domain.ErrUnauthenticated
	}
	goalID, err := parseID(id)
	if err != nil {
		return domain.Goal{}, err
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return domain.Goal{}, err
	}

	values := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Goal{}, domain.ErrInvalidTitle
		}
		values["title"] = title
	}
	if req.TargetValue != nil {
		if req.TargetValue.IsNegative() {
			return domain.Goal{}, domain.ErrInvalidTargetValue
		}
		values["target_value"] = *req.TargetValue
	}
	if req.CurrentValue != nil {
		values["current_value"] = *req.CurrentValue
	}

	filter := &domain.Goal{ID: goalID, UserID: userID}
	if len(values) > 0 {
		values["updated_at"] = s.clock.Now()
		affected, err := s.store.Update(ctx, filter, values)
		if err != nil {
			return domain.Goal{}, err
		}
		if affected == 0 {
			return domain.Goal{}, domain.ErrNotFound
		}
	}

	goal, err := s.store.FindOne(ctx, filter)
	if err != nil {
		return domain.Goal{}, err
	}
	if goal == nil {
		return domain.Goal{}, domain.ErrNotFound
	}
	return *goal, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	goalID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.store.Delete(ctx, &domain.Goal{ID: goalID, UserID: userID})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Goal, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	var goals []domain.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year DESC").Order("month DESC").Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *Service) ListByMonth(ctx context.Context, month, year int) ([]domain.Goal, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	items, err := s.store.Find(ctx, &domain.Goal{UserID: userID, Month: month, Year: year})
	if err != nil {
		return nil, err
	}
	goals := make([]domain.Goal, 0, len(items))
	for _, item := range items {
		goals = append(goals, *item)
	}
	return goals, nil
}

func (s *Service) RevenueGoal(ctx context.Context, month, year int) (*domain.Goal, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	return s.store.FindOne(ctx, &domain.Goal{
		UserID: userID,
		Type:   domain.TypeRevenue,
		Month:  month,
		Year:   year,
	})
}

// EnsureRevenueGoal returns the period's revenue goal, creating a zero-target
// one when none exists. A concurrent create is resolved by re-reading.
func (s *Service) EnsureRevenueGoal(ctx context.Context, month, year int) (domain.Goal, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Goal{}, domain.ErrUnauthenticated
	}
	if err := validatePeriod(month, year); err != nil {
		return domain.Goal{}, err
	}

	filter := &domain.Goal{UserID: userID, Type: domain.TypeRevenue, Month: month, Year: year}
	existing, err := s.store.FindOne(ctx, filter)
	if err != nil {
		return domain.Goal{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := s.clock.Now()
	goal := domain.Goal{
		ID:          s.genID.Generate(),
		UserID:      userID,
		Title:       domain.RevenueGoalTitle,
		TargetValue: decimal.Zero,
		Type:        domain.TypeRevenue,
		Month:       month,
		Year:        year,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, &goal); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return domain.Goal{}, err
		}
		existing, err := s.store.FindOne(ctx, filter)
		if err != nil {
			return domain.Goal{}, err
		}
		if existing == nil {
			return domain.Goal{}, domain.ErrConflict
		}
		return *existing, nil
	}

	s.log.Info("revenue goal created", zap.Int("month", month), zap.Int("year", year))
	return goal, nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return domain.ErrInvalidPeriod
	}
	return nil
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed, nil
}
