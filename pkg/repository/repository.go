package repository

import (
	"context"

	"github.com/smallbiznis/gestao/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm store. Zero-value fields in the filter struct are
// ignored, so every caller must set the owning user on the filter.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, filter *T, values map[string]any) (int64, error)
	Delete(ctx context.Context, filter *T) (int64, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
}
