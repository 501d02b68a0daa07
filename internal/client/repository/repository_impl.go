package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gestao/internal/client/domain"
	"github.com/smallbiznis/gestao/pkg/db/option"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
	"gorm.io/gorm"
)

const clientColumns = `id, user_id, lead_id, name, email, phone, company, product_sold, notes,
	is_recurrent, recurrence_value, recurrence_date, contract_end_date, status, sale_value,
	created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (`+clientColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.UserID,
		client.LeadID,
		client.Name,
		client.Email,
		client.Phone,
		client.Company,
		client.ProductSold,
		client.Notes,
		client.IsRecurrent,
		client.RecurrenceValue,
		client.RecurrenceDate,
		client.ContractEndDate,
		client.Status,
		client.SaleValue,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT `+clientColumns+` FROM clients WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID string, filter domain.ListClientFilter, page *pagination.Pagination) ([]*domain.Client, error) {
	var clients []*domain.Client
	stmt := db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("user_id = ?", userID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.IsRecurrent != nil {
		stmt = stmt.Where("is_recurrent = ?", *filter.IsRecurrent)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at < ?", *filter.CreatedTo)
	}
	if page != nil {
		stmt = option.ApplyPagination(*page).Apply(stmt)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) ListRecurring(ctx context.Context, db *gorm.DB, userID string) ([]*domain.Client, error) {
	var clients []*domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT `+clientColumns+` FROM clients
		 WHERE user_id = ? AND is_recurrent = ? AND recurrence_value IS NOT NULL
		 ORDER BY created_at ASC, id ASC`,
		userID,
		true,
	).Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET name = ?, email = ?, phone = ?, company = ?, product_sold = ?, notes = ?,
		 is_recurrent = ?, recurrence_value = ?, recurrence_date = ?, contract_end_date = ?,
		 status = ?, sale_value = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		client.Name,
		client.Email,
		client.Phone,
		client.Company,
		client.ProductSold,
		client.Notes,
		client.IsRecurrent,
		client.RecurrenceValue,
		client.RecurrenceDate,
		client.ContractEndDate,
		client.Status,
		client.SaleValue,
		client.UpdatedAt,
		client.UserID,
		client.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM clients WHERE user_id = ? AND id = ?`, userID, id)
	return res.RowsAffected, res.Error
}
