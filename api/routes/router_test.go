package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mvalderrama/tillpoint/internal/cart"
	"github.com/mvalderrama/tillpoint/internal/catalog"
	checkoutsvc "github.com/mvalderrama/tillpoint/internal/checkout"
	"github.com/mvalderrama/tillpoint/internal/sales"
	"github.com/mvalderrama/tillpoint/pkg/config"
	"github.com/mvalderrama/tillpoint/pkg/db"
	"github.com/mvalderrama/tillpoint/pkg/db/models"
	"github.com/mvalderrama/tillpoint/pkg/logger"
	"github.com/mvalderrama/tillpoint/pkg/metrics"
)

type testStack struct {
	handler http.Handler
	client  *db.Client
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev
	cfg.DB.DSN = fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", uuid.NewString())
	cfg.DB.MaxOpenConns = 1
	cfg.DB.MaxIdleConns = 1

	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	client, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Product{}, &models.Sale{}, &models.SaleItem{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	catalogRepo := catalog.NewRepository(client.DB())
	salesRepo := sales.NewRepository(client.DB())

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		t.Fatalf("building catalog service: %v", err)
	}
	salesService, err := sales.NewService(salesRepo)
	if err != nil {
		t.Fatalf("building sales service: %v", err)
	}

	registry := prometheus.NewRegistry()
	checkoutService, err := checkoutsvc.NewService(client, catalogRepo, salesRepo, logg, metrics.NewCheckoutMetrics(registry))
	if err != nil {
		t.Fatalf("building checkout service: %v", err)
	}

	handler := NewRouter(cfg, logg, client, catalogService, salesService, cart.NewManager(), checkoutService, registry)
	return &testStack{handler: handler, client: client}
}

func (s *testStack) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealth(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodGet, "/health/live", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health/live, got %d", rec.Code)
	}
	if rec.Header().Get("X-TillPoint-Env") != config.AppEnvDev {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-TillPoint-Env"))
	}

	rec = stack.do(t, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health/ready, got %d", rec.Code)
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestRouterRequestIDHeader(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodGet, "/health/live", "")
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header on every response")
	}
}

// Full register flow over HTTP: create a product, build the cart against its
// stock, check out, then verify the ledger and the decremented stock.
func TestRouterCheckoutFlow(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/api/v1/products",
		`{"name":"Ear Buds","price":100.00,"stock":6,"category":"Electronics"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating product: got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data models.Product `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decoding product: %v", err)
	}
	productID := created.Data.ID.String()

	rec = stack.do(t, http.MethodPost, "/api/v1/cart/items",
		`{"product_id":"`+productID+`","quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("adding to cart: got %d: %s", rec.Code, rec.Body.String())
	}

	// Five more would exceed the six in stock.
	rec = stack.do(t, http.MethodPost, "/api/v1/cart/items",
		`{"product_id":"`+productID+`","quantity":5}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 adding past stock, got %d", rec.Code)
	}

	rec = stack.do(t, http.MethodPut, "/api/v1/cart/items/"+productID, `{"quantity":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("setting quantity: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = stack.do(t, http.MethodPost, "/api/v1/checkout", `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: got %d: %s", rec.Code, rec.Body.String())
	}

	var sale struct {
		Data models.Sale `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&sale); err != nil {
		t.Fatalf("decoding sale: %v", err)
	}
	if sale.Data.CustomerName != models.GuestCustomerName {
		t.Fatalf("expected guest customer, got %q", sale.Data.CustomerName)
	}
	if !sale.Data.Total.Equal(decimal.NewFromFloat(400.0)) {
		t.Fatalf("expected total 400.00, got %s", sale.Data.Total)
	}

	rec = stack.do(t, http.MethodGet, "/api/v1/products/"+productID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("fetching product: got %d", rec.Code)
	}
	var fetched struct {
		Data models.Product `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("decoding product: %v", err)
	}
	if fetched.Data.Stock != 2 {
		t.Fatalf("expected stock 2 after checkout, got %d", fetched.Data.Stock)
	}

	rec = stack.do(t, http.MethodGet, "/api/v1/cart", "")
	var view struct {
		Data struct {
			LineCount int `json:"line_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decoding cart: %v", err)
	}
	if view.Data.LineCount != 0 {
		t.Fatalf("expected cart cleared after checkout, got %d lines", view.Data.LineCount)
	}

	rec = stack.do(t, http.MethodGet, "/api/v1/reports/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("fetching summary: got %d", rec.Code)
	}
	var summary struct {
		Data struct {
			Sales struct {
				SaleCount    int             `json:"sale_count"`
				TotalRevenue decimal.Decimal `json:"total_revenue"`
			} `json:"sales"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if summary.Data.Sales.SaleCount != 1 {
		t.Fatalf("expected one sale in report, got %d", summary.Data.Sales.SaleCount)
	}
	if !summary.Data.Sales.TotalRevenue.Equal(decimal.NewFromFloat(400.0)) {
		t.Fatalf("expected revenue 400.00, got %s", summary.Data.Sales.TotalRevenue)
	}
}

func TestRouterCheckoutEmptyCart(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.do(t, http.MethodPost, "/api/v1/checkout", `{}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty cart, got %d: %s", rec.Code, rec.Body.String())
	}
}
