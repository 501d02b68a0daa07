package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gestao/internal/billing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const withClientSelect = `SELECT b.id, b.user_id, b.client_id, b.month, b.year, b.amount, b.is_paid,
	b.paid_at, b.status, b.cancelled_at, b.notes, b.created_at, b.updated_at,
	COALESCE(c.name, '') AS client_name, c.email AS client_email, c.phone AS client_phone,
	c.recurrence_date AS client_recurrence_date, c.contract_end_date AS client_contract_end_date,
	c.status AS client_status
	FROM billings b
	LEFT JOIN clients c ON c.id = b.client_id AND c.user_id = b.user_id`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIgnoreConflicts(ctx context.Context, db *gorm.DB, billings []*domain.Billing) (int64, error) {
	if len(billings) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "month"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(&billings)
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*domain.Billing, error) {
	var billing domain.Billing
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, client_id, month, year, amount, is_paid, paid_at, status,
		 cancelled_at, notes, created_at, updated_at
		 FROM billings WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Scan(&billing).Error
	if err != nil {
		return nil, err
	}
	if billing.ID == 0 {
		return nil, nil
	}
	return &billing, nil
}

func (r *repo) FindWithClient(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*domain.BillingWithClient, error) {
	var row domain.BillingWithClient
	err := db.WithContext(ctx).Raw(
		withClientSelect+` WHERE b.user_id = ? AND b.id = ?`,
		userID,
		id,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) ListClientIDsByPeriod(ctx context.Context, db *gorm.DB, userID string, period domain.Period, status domain.Status) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	stmt := db.WithContext(ctx).
		Model(&domain.Billing{}).
		Where("user_id = ? AND month = ? AND year = ?", userID, period.Month, period.Year)
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if err := stmt.Pluck("client_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ListWithClients(ctx context.Context, db *gorm.DB, userID string, filter domain.ListBillingFilter) ([]domain.BillingWithClient, error) {
	var (
		where = []string{"b.user_id = ?"}
		args  = []any{userID}
	)
	if filter.Period != nil {
		where = append(where, "b.month = ?", "b.year = ?")
		args = append(args, filter.Period.Month, filter.Period.Year)
	}
	if filter.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, filter.Status)
	}
	if filter.IsPaid != nil {
		where = append(where, "b.is_paid = ?")
		args = append(args, *filter.IsPaid)
	}

	var rows []domain.BillingWithClient
	err := db.WithContext(ctx).Raw(
		withClientSelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY b.created_at DESC, b.id DESC`,
		args...,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListOutstanding(ctx context.Context, db *gorm.DB, userID string) ([]domain.BillingWithClient, error) {
	var rows []domain.BillingWithClient
	err := db.WithContext(ctx).Raw(
		withClientSelect+` WHERE b.user_id = ? AND b.is_paid = ? AND b.status <> ?
		 ORDER BY b.created_at DESC, b.id DESC`,
		userID,
		false,
		domain.StatusCancelled,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Billing{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(fields)
	return res.RowsAffected, res.Error
}
