package controllers

import (
	"net/http"

	"github.com/mvalderrama/tillpoint/api/responses"
	"github.com/mvalderrama/tillpoint/api/validators"
	"github.com/mvalderrama/tillpoint/internal/cart"
	"github.com/mvalderrama/tillpoint/internal/checkout"
	"github.com/mvalderrama/tillpoint/pkg/db/models"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
	"github.com/mvalderrama/tillpoint/pkg/logger"
)

const maxCustomerNameLen = 120

// Checkout commits the active cart as a sale. The cart stays locked for the
// whole commit so nothing mutates it mid-transaction.
func Checkout(manager *cart.Manager, svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		// The body is optional; an absent body checks out as the guest customer.
		var payload checkoutRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		customerName := validators.SanitizeString(payload.CustomerName, maxCustomerNameLen)

		var sale *models.Sale
		err := manager.With(func(c *cart.Cart) error {
			var err error
			sale, err = svc.Checkout(r.Context(), c, customerName)
			return err
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

type checkoutRequest struct {
	CustomerName string `json:"customer_name,omitempty" validate:"omitempty,max=120"`
}
