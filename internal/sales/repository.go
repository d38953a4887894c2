package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvalderrama/tillpoint/pkg/db/models"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
	"github.com/mvalderrama/tillpoint/pkg/pagination"
)

// Repository persists completed sales. The ledger is append only; rows are
// never updated or deleted once written.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Sale, error)
	Recent(ctx context.Context, n int) ([]models.Sale, error)
	Count(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if sale.Date.IsZero() {
		sale.Date = time.Now().UTC()
	}
	for i := range sale.Items {
		sale.Items[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeWrite, err, "append sale")
	}
	return sale, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get sale")
	}
	return &sale, nil
}

// List returns sales newest first, keyed by (created_at, id) so pages stay
// stable under concurrent appends.
func (r *repository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Sale, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var sales []models.Sale
	if err := q.Find(&sales).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	return sales, nil
}

func (r *repository) Recent(ctx context.Context, n int) ([]models.Sale, error) {
	if n <= 0 {
		n = pagination.DefaultLimit
	}

	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&sales).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recent sales")
	}
	return sales, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Sale{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count sales")
	}
	return count, nil
}

func (r *repository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "total revenue")
	}
	return total, nil
}
