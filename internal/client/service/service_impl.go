package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/gestao/internal/client/domain"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Validate *validator.Validate
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	validate *validator.Validate
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("client.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		validate: p.Validate,
		repo:     p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrUnauthenticated
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return domain.Client{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}
	if req.RecurrenceValue != nil && req.RecurrenceValue.IsNegative() {
		return domain.Client{}, domain.ErrInvalidRecurrenceValue
	}
	if req.SaleValue != nil && req.SaleValue.IsNegative() {
		return domain.Client{}, domain.ErrInvalidSaleValue
	}

	status := req.Status
	if status == "" {
		status = domain.StatusInProgress
	}

	contractEnd, err := parseDate(req.ContractEndDate)
	if err != nil {
		return domain.Client{}, err
	}

	var leadID *snowflake.ID
	if req.LeadID != nil && strings.TrimSpace(*req.LeadID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.LeadID))
		if err != nil || parsed == 0 {
			return domain.Client{}, domain.ErrInvalidLeadID
		}
		leadID = &parsed
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:              s.genID.Generate(),
		UserID:          userID,
		LeadID:          leadID,
		Name:            name,
		Email:           trimmed(req.Email),
		Phone:           trimmed(req.Phone),
		Company:         trimmed(req.Company),
		ProductSold:     trimmed(req.ProductSold),
		Notes:           req.Notes,
		IsRecurrent:     req.IsRecurrent,
		RecurrenceValue: req.RecurrenceValue,
		RecurrenceDate:  req.RecurrenceDate,
		ContractEndDate: contractEnd,
		Status:          status,
		SaleValue:       req.SaleValue,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	s.log.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.Bool("is_recurrent", client.IsRecurrent),
	)
	return client, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateClientRequest) (domain.Client, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrUnauthenticated
	}
	clientID, err := parseID(id)
	if err != nil {
		return domain.Client{}, err
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return domain.Client{}, err
	}

	client, err := s.repo.FindByID(ctx, s.db, userID, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if client == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		client.Name = name
	}
	if req.Email != nil {
		client.Email = trimmed(req.Email)
	}
	if req.Phone != nil {
		client.Phone = trimmed(req.Phone)
	}
	if req.Company != nil {
		client.Company = trimmed(req.Company)
	}
	if req.ProductSold != nil {
		client.ProductSold = trimmed(req.ProductSold)
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}
	if req.IsRecurrent != nil {
		client.IsRecurrent = *req.IsRecurrent
	}
	if req.RecurrenceValue != nil {
		if req.RecurrenceValue.IsNegative() {
			return domain.Client{}, domain.ErrInvalidRecurrenceValue
		}
		client.RecurrenceValue = req.RecurrenceValue
	}
	if req.RecurrenceDate != nil {
		client.RecurrenceDate = req.RecurrenceDate
	}
	if req.ContractEndDate != nil {
		contractEnd, err := parseDate(req.ContractEndDate)
		if err != nil {
			return domain.Client{}, err
		}
		client.ContractEndDate = contractEnd
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return domain.Client{}, domain.ErrInvalidStatus
		}
		client.Status = *req.Status
	}
	if req.SaleValue != nil {
		if req.SaleValue.IsNegative() {
			return domain.Client{}, domain.ErrInvalidSaleValue
		}
		client.SaleValue = req.SaleValue
	}
	client.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Client, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrUnauthenticated
	}
	clientID, err := parseID(id)
	if err != nil {
		return domain.Client{}, err
	}

	client, err := s.repo.FindByID(ctx, s.db, userID, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if client == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ListClientResponse{}, domain.ErrUnauthenticated
	}

	filter := domain.ListClientFilter{IsRecurrent: req.IsRecurrent}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.Status(status)
		if !filter.Status.Valid() {
			return domain.ListClientResponse{}, domain.ErrInvalidStatus
		}
	}

	page := req.Pagination
	items, err := s.repo.List(ctx, s.db, userID, filter, &page)
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Size(), func(client *domain.Client) pagination.Cursor {
		return pagination.Cursor{
			ID:        client.ID.String(),
			CreatedAt: client.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}
	return domain.ListClientResponse{PageInfo: pageInfo, Clients: clients}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	clientID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, userID, clientID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// parseDate reads a calendar date; nil or empty means no date.
func parseDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	raw := strings.TrimSpace(*value)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, domain.ErrInvalidContractEndDate
	}
	return &parsed, nil
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
