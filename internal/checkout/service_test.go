package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mvalderrama/tillpoint/internal/cart"
	"github.com/mvalderrama/tillpoint/internal/catalog"
	"github.com/mvalderrama/tillpoint/internal/sales"
	"github.com/mvalderrama/tillpoint/pkg/config"
	"github.com/mvalderrama/tillpoint/pkg/db"
	"github.com/mvalderrama/tillpoint/pkg/db/models"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
)

type fixture struct {
	client  *db.Client
	catalog catalog.Repository
	sales   sales.Repository
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.DBConfig{
		DSN:          fmt.Sprintf("file:checkout_%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(&models.Product{}, &models.Sale{}, &models.SaleItem{}))

	catalogRepo := catalog.NewRepository(client.DB())
	salesRepo := sales.NewRepository(client.DB())
	svc, err := NewService(client, catalogRepo, salesRepo, nil, nil)
	require.NoError(t, err)

	return &fixture{client: client, catalog: catalogRepo, sales: salesRepo, svc: svc}
}

func (f *fixture) seedProduct(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Price:    decimal.NewFromFloat(price),
		Stock:    stock,
		Category: "Electronics",
	}
	require.NoError(t, f.client.DB().Create(product).Error)
	return product
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()

	got, err := f.catalog.GetByID(context.Background(), id)
	require.NoError(t, err)
	return got.Stock
}

func TestCheckoutCommitsSaleAndStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	earBuds := f.seedProduct(t, "Ear Buds", 100.0, 6)

	c := cart.New()
	require.NoError(t, c.AddQuantity(*earBuds, 4))

	sale, err := f.svc.Checkout(ctx, c, "")
	require.NoError(t, err)
	assert.Equal(t, models.GuestCustomerName, sale.CustomerName)
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(400.0)), "got %s", sale.Total)

	assert.Equal(t, 2, f.stockOf(t, earBuds.ID))
	assert.True(t, c.IsEmpty(), "cart clears on success")

	stored, err := f.sales.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, earBuds.ID, stored.Items[0].ProductID)
	assert.Equal(t, "Ear Buds", stored.Items[0].ProductName)
	assert.Equal(t, 4, stored.Items[0].Quantity)
}

func TestCheckoutUsesProvidedCustomerName(t *testing.T) {
	f := newFixture(t)

	mouse := f.seedProduct(t, "Mouse", 45.0, 8)
	c := cart.New()
	require.NoError(t, c.AddQuantity(*mouse, 1))

	sale, err := f.svc.Checkout(context.Background(), c, "  Alex  ")
	require.NoError(t, err)
	assert.Equal(t, "Alex", sale.CustomerName)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), cart.New(), "")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeEmptyCart, typed.Code())
}

// Stock drops between cart build and checkout. The whole commit must abort:
// no sale row, no stock change on any line, cart intact.
func TestCheckoutAbortsOnStaleStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	earBuds := f.seedProduct(t, "Ear Buds", 100.0, 6)
	mouse := f.seedProduct(t, "Mouse", 45.0, 8)

	c := cart.New()
	require.NoError(t, c.AddQuantity(*earBuds, 4))
	require.NoError(t, c.AddQuantity(*mouse, 2))

	// Another sale shrinks the ear buds stock under the reservation.
	require.NoError(t, f.catalog.DecrementStock(ctx, earBuds.ID, 3))

	_, err := f.svc.Checkout(ctx, c, "")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStockConflict, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	failed, ok := details["lines"].([]FailedLine)
	require.True(t, ok)
	require.Len(t, failed, 1)
	assert.Equal(t, earBuds.ID.String(), failed[0].ProductID)
	assert.Equal(t, 4, failed[0].Requested)
	assert.Equal(t, 3, failed[0].Available)

	// Ledger untouched.
	count, err := f.sales.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Sibling line rolled back too.
	assert.Equal(t, 3, f.stockOf(t, earBuds.ID))
	assert.Equal(t, 8, f.stockOf(t, mouse.ID))

	// Cart survives so the operator can adjust it.
	assert.Equal(t, 2, c.LineCount())
	assert.Equal(t, 4, c.ReservedQuantity(earBuds.ID))
}

func TestCheckoutReportsEveryFailedLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	earBuds := f.seedProduct(t, "Ear Buds", 100.0, 6)
	powerBank := f.seedProduct(t, "Power Bank", 100.0, 12)
	mouse := f.seedProduct(t, "Mouse", 45.0, 8)

	c := cart.New()
	require.NoError(t, c.AddQuantity(*earBuds, 6))
	require.NoError(t, c.AddQuantity(*powerBank, 12))
	require.NoError(t, c.AddQuantity(*mouse, 1))

	require.NoError(t, f.catalog.DecrementStock(ctx, earBuds.ID, 2))
	require.NoError(t, f.catalog.DecrementStock(ctx, powerBank.ID, 5))

	_, err := f.svc.Checkout(ctx, c, "")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStockConflict, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	failed, ok := details["lines"].([]FailedLine)
	require.True(t, ok)
	assert.Len(t, failed, 2)

	assert.Equal(t, 8, f.stockOf(t, mouse.ID))
}

func TestCheckoutRollsBackWhenAppendFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	earBuds := f.seedProduct(t, "Ear Buds", 100.0, 6)

	c := cart.New()
	require.NoError(t, c.AddQuantity(*earBuds, 2))

	boom := fmt.Errorf("ledger unavailable")
	svc, err := NewService(failingRunner{err: boom}, f.catalog, f.sales, nil, nil)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, c, "")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 6, f.stockOf(t, earBuds.ID))
	assert.Equal(t, 2, c.ReservedQuantity(earBuds.ID))
}

type failingRunner struct {
	err error
}

func (r failingRunner) WithTx(_ context.Context, _ func(tx *gorm.DB) error) error {
	return r.err
}
