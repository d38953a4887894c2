package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalderrama/tillpoint/pkg/db/models"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
)

// Repository manages persistence for catalog products. Every write is a
// single-row operation; multi-row consistency is the checkout transaction's
// job.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, newStock int) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	Search(ctx context.Context, query, category string) ([]models.Product, error)
	LowStock(ctx context.Context) ([]models.Product, error)
	CountAll(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeWrite, err, "creating product")
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeWrite, err, "updating product")
	}
	return product, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWrite, res.Error, "deleting product")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// SetStock persists the stock column only; other fields are untouched.
func (r *repository) SetStock(ctx context.Context, id uuid.UUID, newStock int) error {
	if newStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", newStock)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWrite, res.Error, "updating stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// DecrementStock subtracts qty inside a single guarded statement. The
// stock >= qty predicate is the commit-time re-validation: a row that no
// longer covers the quantity is simply not matched.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive").
			WithDetails(map[string]any{"quantity": qty})
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWrite, res.Error, "decrementing stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	product, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{"available": product.Stock, "requested": qty})
}

func (r *repository) Search(ctx context.Context, query, category string) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{})
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if category != "" {
		tx = tx.Where("category = ?", category)
	}

	var products []models.Product
	if err := tx.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) LowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("stock <= low_stock_threshold").
		Order("stock ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("stock <= low_stock_threshold").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
