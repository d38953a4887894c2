package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mvalderrama/tillpoint/internal/cart"
	"github.com/mvalderrama/tillpoint/internal/catalog"
	"github.com/mvalderrama/tillpoint/internal/sales"
	"github.com/mvalderrama/tillpoint/pkg/db/models"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
	"github.com/mvalderrama/tillpoint/pkg/logger"
	"github.com/mvalderrama/tillpoint/pkg/metrics"
)

// txRunner runs fn inside a single database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// FailedLine describes one cart line that no longer fits current stock.
type FailedLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// Service commits a cart as a sale. The ledger append and every stock
// decrement happen in one transaction; any line that fails re-validation
// aborts the whole commit.
type Service struct {
	runner  txRunner
	catalog catalog.Repository
	sales   sales.Repository
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
}

func NewService(runner txRunner, catalogRepo catalog.Repository, salesRepo sales.Repository, logg *logger.Logger, m *metrics.CheckoutMetrics) (*Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if salesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if m == nil {
		m = metrics.NewCheckoutMetrics(nil)
	}
	return &Service{
		runner:  runner,
		catalog: catalogRepo,
		sales:   salesRepo,
		logg:    logg,
		metrics: m,
	}, nil
}

// Checkout commits the cart under the given customer name. A blank name
// records the sale against the guest customer. On success the cart is
// cleared; on any failure the cart and all stock rows are left untouched.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, customerName string) (*models.Sale, error) {
	if c == nil || c.IsEmpty() {
		err := pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		s.metrics.IncFailure(string(err.Code()))
		return nil, err
	}

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = models.GuestCustomerName
	}

	lines := c.Lines()
	sale := buildSale(customerName, lines)

	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.sales.WithTx(tx).Append(ctx, sale); err != nil {
			return err
		}

		catalogTx := s.catalog.WithTx(tx)
		var failed []FailedLine
		var causes error
		for _, line := range lines {
			err := catalogTx.DecrementStock(ctx, line.Product.ID, line.Quantity)
			if err == nil {
				continue
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
				return err
			}
			fl := FailedLine{
				ProductID:   line.Product.ID.String(),
				ProductName: line.Product.Name,
				Requested:   line.Quantity,
				Available:   availableFromDetails(typed),
			}
			failed = append(failed, fl)
			causes = multierr.Append(causes, err)
		}
		if len(failed) > 0 {
			return pkgerrors.Wrap(pkgerrors.CodeStockConflict, causes, "stock changed since the cart was built").
				WithDetails(map[string]any{"lines": failed})
		}
		return nil
	})
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(string(code))
		if s.logg != nil {
			s.logg.Error(ctx, "checkout failed", err)
		}
		return nil, err
	}

	c.Clear()
	s.metrics.ObserveCommit(sale.Total.InexactFloat64())
	if s.logg != nil {
		s.logg.Info(s.logg.WithSaleID(ctx, sale.ID.String()), "sale committed")
	}
	return sale, nil
}

func buildSale(customerName string, lines []cart.Line) *models.Sale {
	total := decimal.Zero
	items := make([]models.SaleItem, 0, len(lines))
	for _, line := range lines {
		total = total.Add(line.Subtotal())
		items = append(items, models.SaleItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
		})
	}
	return &models.Sale{
		CustomerName: customerName,
		Total:        total,
		Items:        items,
	}
}

func availableFromDetails(err *pkgerrors.Error) int {
	details, ok := err.Details().(map[string]any)
	if !ok {
		return 0
	}
	if v, ok := details["available"].(int); ok {
		return v
	}
	return 0
}
