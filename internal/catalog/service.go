package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvalderrama/tillpoint/pkg/db/models"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	ListProducts(ctx context.Context, query, category string) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, newStock int) (*models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	LowStockProducts(ctx context.Context) ([]models.Product, error)
	Summary(ctx context.Context) (*Summary, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name              string
	Description       string
	Price             decimal.Decimal
	Stock             int
	Category          string
	ImageURL          *string
	LowStockThreshold *int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	Price             *decimal.Decimal
	Stock             *int
	Category          *string
	ImageURL          *string
	LowStockThreshold *int
}

// Summary aggregates the catalog counters shown on the dashboard.
type Summary struct {
	ProductCount  int64 `json:"product_count"`
	LowStockCount int64 `json:"low_stock_count"`
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, query, category string) ([]models.Product, error) {
	return s.repo.Search(ctx, query, category)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	threshold := models.DefaultLowStockThreshold
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold cannot be negative")
		}
		threshold = *input.LowStockThreshold
	}

	product := &models.Product{
		Name:              name,
		Description:       strings.TrimSpace(input.Description),
		Price:             input.Price,
		Stock:             input.Stock,
		Category:          category,
		ImageURL:          input.ImageURL,
		LowStockThreshold: threshold,
	}
	return s.repo.Create(ctx, product)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
		}
		product.Category = category
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold cannot be negative")
		}
		product.LowStockThreshold = *input.LowStockThreshold
	}

	return s.repo.Update(ctx, product)
}

// DeleteProduct removes the product outright. Deletion is an explicit catalog
// operation, distinct from a product merely reaching zero stock.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) SetStock(ctx context.Context, id uuid.UUID, newStock int) (*models.Product, error) {
	if err := s.repo.SetStock(ctx, id, newStock); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	newStock := product.Stock + delta
	if newStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment would make stock negative").
			WithDetails(map[string]any{"stock": product.Stock, "delta": delta})
	}
	return s.SetStock(ctx, id, newStock)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *service) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.LowStock(ctx)
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	productCount, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{ProductCount: productCount, LowStockCount: lowStock}, nil
}
