package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/lead/domain"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"github.com/smallbiznis/gestao/pkg/db/option"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
	"github.com/smallbiznis/gestao/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	recentLeadsLimit = 5
	dateLayout       = "2006-01-02"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Validate *validator.Validate
	Store    repository.Repository[domain.Lead]
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	validate *validator.Validate
	store    repository.Repository[domain.Lead]
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("lead.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		validate: p.Validate,
		store:    p.Store,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLeadRequest) (domain.Lead, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Lead{}, domain.ErrUnauthenticated
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return domain.Lead{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Lead{}, domain.ErrInvalidName
	}
	if req.EstimatedValue != nil && req.EstimatedValue.IsNegative() {
		return domain.Lead{}, domain.ErrInvalidEstimatedValue
	}

	source := req.Source
	if source == "" {
		source = domain.SourceOther
	}
	stage := req.Stage
	if stage == "" {
		stage = domain.StageContacted
	}

	now := s.clock.Now()
	lead := domain.Lead{
		ID:             s.genID.Generate(),
		UserID:         userID,
		Name:           name,
		Email:          trimmed(req.Email),
		Phone:          trimmed(req.Phone),
		Source:         source,
		Stage:          stage,
		EstimatedValue: req.EstimatedValue,
		Tags:           normalizeTags(req.Tags),
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, &lead); err != nil {
		return domain.Lead{}, err
	}

	s.log.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("source", string(lead.Source)),
	)
	return lead, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateLeadRequest) (domain.Lead, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Lead{}, domain.ErrUnauthenticated
	}
	leadID, err := parseID(id)
	if err != nil {
		return domain.Lead{}, err
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return domain.Lead{}, err
	}

	values := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Lead{}, domain.ErrInvalidName
		}
		values["name"] = name
	}
	if req.Email != nil {
		values["email"] = trimmed(req.Email)
	}
	if req.Phone != nil {
		values["phone"] = trimmed(req.Phone)
	}
	if req.Source != nil {
		values["source"] = *req.Source
	}
	if req.Stage != nil {
		if !req.Stage.Valid() {
			return domain.Lead{}, domain.ErrInvalidStage
		}
		values["stage"] = *req.Stage
	}
	if req.EstimatedValue != nil {
		if req.EstimatedValue.IsNegative() {
			return domain.Lead{}, domain.ErrInvalidEstimatedValue
		}
		values["estimated_value"] = *req.EstimatedValue
	}
	if req.Tags != nil {
		values["tags"] = datatypes.JSONSlice[string](normalizeTags(req.Tags))
	}
	if req.Notes != nil {
		values["notes"] = *req.Notes
	}

	filter := &domain.Lead{ID: leadID, UserID: userID}
	if len(values) > 0 {
		values["updated_at"] = s.clock.Now()
		affected, err := s.store.Update(ctx, filter, values)
		if err != nil {
			return domain.Lead{}, err
		}
		if affected == 0 {
			return domain.Lead{}, domain.ErrNotFound
		}
	}

	lead, err := s.store.FindOne(ctx, filter)
	if err != nil {
		return domain.Lead{}, err
	}
	if lead == nil {
		return domain.Lead{}, domain.ErrNotFound
	}
	if req.Stage != nil {
		s.log.Info("lead stage changed",
			zap.String("lead_id", lead.ID.String()),
			zap.String("stage", string(lead.Stage)),
		)
	}
	return *lead, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Lead, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Lead{}, domain.ErrUnauthenticated
	}
	leadID, err := parseID(id)
	if err != nil {
		return domain.Lead{}, err
	}
	lead, err := s.store.FindOne(ctx, &domain.Lead{ID: leadID, UserID: userID})
	if err != nil {
		return domain.Lead{}, err
	}
	if lead == nil {
		return domain.Lead{}, domain.ErrNotFound
	}
	return *lead, nil
}

func (s *Service) List(ctx context.Context, req domain.ListLeadRequest) (domain.ListLeadResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ListLeadResponse{}, domain.ErrUnauthenticated
	}

	filter := &domain.Lead{UserID: userID}
	if stage := strings.TrimSpace(req.Stage); stage != "" {
		if !domain.Stage(stage).Valid() {
			return domain.ListLeadResponse{}, domain.ErrInvalidStage
		}
		filter.Stage = domain.Stage(stage)
	}

	items, err := s.store.Find(ctx, filter,
		option.ApplyPagination(req.Pagination),
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", nil)),
	)
	if err != nil {
		return domain.ListLeadResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, req.Pagination.Size(), func(lead *domain.Lead) pagination.Cursor {
		return pagination.Cursor{
			ID:        lead.ID.String(),
			CreatedAt: lead.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})
	return domain.ListLeadResponse{PageInfo: pageInfo, Leads: deref(items)}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	leadID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.store.Delete(ctx, &domain.Lead{ID: leadID, UserID: userID})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.log.Info("lead deleted", zap.String("lead_id", leadID.String()))
	return nil
}

func (s *Service) StageCounts(ctx context.Context) (map[domain.Stage]int64, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return s.stageCounts(ctx, userID)
}

// Stats computes the pipeline snapshot. Day and week boundaries are taken in
// loc; the week starts on Sunday.
func (s *Service) Stats(ctx context.Context, now time.Time, loc *time.Location) (domain.Stats, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Stats{}, domain.ErrUnauthenticated
	}
	if loc == nil {
		loc = time.UTC
	}

	local := now.In(loc)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	startOfWeek := startOfDay.AddDate(0, 0, -int(local.Weekday()))
	owner := &domain.Lead{UserID: userID}

	total, err := s.store.Count(ctx, owner)
	if err != nil {
		return domain.Stats{}, err
	}
	today, err := s.store.Count(ctx, owner, option.ApplyOperator(option.Condition{
		Field: "created_at", Operator: option.GTE, Value: startOfDay.UTC(),
	}))
	if err != nil {
		return domain.Stats{}, err
	}
	byStage, err := s.stageCounts(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	bySource, err := s.sourceCounts(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}

	weekItems, err := s.store.Find(ctx, owner, option.ApplyOperator(option.Condition{
		Field: "created_at", Operator: option.GTE, Value: startOfWeek.UTC(),
	}))
	if err != nil {
		return domain.Stats{}, err
	}
	week := make(map[string]int64)
	for _, lead := range weekItems {
		week[lead.CreatedAt.In(loc).Format(dateLayout)]++
	}

	recent, err := s.store.Find(ctx, owner,
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", nil)),
		option.WithLimit(recentLeadsLimit),
	)
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		Total:           total,
		CreatedToday:    today,
		ByStage:         byStage,
		BySource:        bySource,
		CreatedThisWeek: week,
		Recent:          deref(recent),
	}, nil
}

type groupCount struct {
	GroupKey string
	Count    int64
}

func (s *Service) stageCounts(ctx context.Context, userID string) (map[domain.Stage]int64, error) {
	var rows []groupCount
	err := s.db.WithContext(ctx).Raw(
		`SELECT stage AS group_key, COUNT(*) AS count FROM leads WHERE user_id = ? GROUP BY stage`,
		userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Stage]int64, len(domain.Stages))
	for _, stage := range domain.Stages {
		counts[stage] = 0
	}
	for _, row := range rows {
		counts[domain.Stage(row.GroupKey)] += row.Count
	}
	return counts, nil
}

func (s *Service) sourceCounts(ctx context.Context, userID string) (map[domain.Source]int64, error) {
	var rows []groupCount
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(source, '') AS group_key, COUNT(*) AS count FROM leads WHERE user_id = ? GROUP BY source`,
		userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Source]int64)
	for _, row := range rows {
		source := domain.Source(row.GroupKey)
		if source == "" {
			source = domain.SourceOther
		}
		counts[source] += row.Count
	}
	return counts, nil
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func deref(items []*domain.Lead) []domain.Lead {
	out := make([]domain.Lead, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}
