package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvalderrama/tillpoint/api/responses"
	"github.com/mvalderrama/tillpoint/api/validators"
	"github.com/mvalderrama/tillpoint/internal/cart"
	"github.com/mvalderrama/tillpoint/internal/catalog"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
	"github.com/mvalderrama/tillpoint/pkg/logger"
)

type cartView struct {
	Lines      []cart.Line     `json:"lines"`
	LineCount  int             `json:"line_count"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

func viewOf(c *cart.Cart) cartView {
	return cartView{
		Lines:      c.Lines(),
		LineCount:  c.LineCount(),
		TotalItems: c.TotalItems(),
		Subtotal:   c.Subtotal(),
	}
}

func CartFetch(manager *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		var view cartView
		_ = manager.With(func(c *cart.Cart) error {
			view = viewOf(c)
			return nil
		})
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem reserves quantity for a product, reading the stock snapshot
// from the catalog at add time.
func CartAddItem(manager *cart.Manager, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil || catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := catalogSvc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view cartView
		err = manager.With(func(c *cart.Cart) error {
			if err := c.AddQuantity(*product, payload.Quantity); err != nil {
				return err
			}
			view = viewOf(c)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func CartSetQuantity(manager *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		productID, err := cartProductIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartSetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view cartView
		err = manager.With(func(c *cart.Cart) error {
			if err := c.SetQuantity(productID, *payload.Quantity); err != nil {
				return err
			}
			view = viewOf(c)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// CartDecrementItem takes one unit off the line, dropping it at zero.
func CartDecrementItem(manager *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		productID, err := cartProductIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view cartView
		err = manager.With(func(c *cart.Cart) error {
			if err := c.RemoveOne(productID); err != nil {
				return err
			}
			view = viewOf(c)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func CartRemoveItem(manager *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		productID, err := cartProductIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var view cartView
		err = manager.With(func(c *cart.Cart) error {
			if err := c.RemoveAll(productID); err != nil {
				return err
			}
			view = viewOf(c)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func CartClear(manager *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		_ = manager.With(func(c *cart.Cart) error {
			c.Clear()
			return nil
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

type cartAddRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type cartSetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

func cartProductIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}
