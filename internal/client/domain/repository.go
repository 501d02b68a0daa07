package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gestao/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*Client, error)
	// List pages by (created_at, id) descending; a nil page returns every match.
	List(ctx context.Context, db *gorm.DB, userID string, filter ListClientFilter, page *pagination.Pagination) ([]*Client, error)
	// ListRecurring returns recurrent clients with a configured recurrence value.
	ListRecurring(ctx context.Context, db *gorm.DB, userID string) ([]*Client, error)
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	Delete(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (int64, error)
}

type ListClientFilter struct {
	Status      Status
	IsRecurrent *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
