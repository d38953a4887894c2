package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvalderrama/tillpoint/pkg/db/models"
	"github.com/mvalderrama/tillpoint/pkg/pagination"
)

// Service provides read access to the sale ledger. Writes only happen
// through the checkout flow, inside its transaction.
type Service interface {
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context, cursor string, limit int) (*Page, error)
	Report(ctx context.Context) (*Report, error)
}

// Page is one window of the ledger plus the cursor for the next one.
type Page struct {
	Sales      []models.Sale `json:"sales"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// Report aggregates the ledger totals shown on the dashboard.
type Report struct {
	SaleCount    int64           `json:"sale_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	RecentSales  []models.Sale   `json:"recent_sales"`
}

const recentSalesLimit = 5

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListSales(ctx context.Context, cursor string, limit int) (*Page, error) {
	var parsed *pagination.Cursor
	if cursor != "" {
		var err error
		parsed, err = pagination.ParseCursor(cursor)
		if err != nil {
			return nil, err
		}
	}

	limit = pagination.NormalizeLimit(limit)
	sales, err := s.repo.List(ctx, parsed, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, err
	}

	page := &Page{Sales: sales}
	if len(sales) > limit {
		page.Sales = sales[:limit]
		last := page.Sales[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Report(ctx context.Context) (*Report, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.Recent(ctx, recentSalesLimit)
	if err != nil {
		return nil, err
	}
	return &Report{SaleCount: count, TotalRevenue: revenue, RecentSales: recent}, nil
}
