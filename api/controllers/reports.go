package controllers

import (
	"net/http"

	"github.com/mvalderrama/tillpoint/api/responses"
	"github.com/mvalderrama/tillpoint/internal/catalog"
	"github.com/mvalderrama/tillpoint/internal/sales"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
	"github.com/mvalderrama/tillpoint/pkg/logger"
)

type summaryView struct {
	Catalog *catalog.Summary `json:"catalog"`
	Sales   *sales.Report    `json:"sales"`
}

// ReportSummary serves the dashboard aggregates in one round trip.
func ReportSummary(catalogSvc catalog.Service, salesSvc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogSvc == nil || salesSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reporting unavailable"))
			return
		}

		catalogSummary, err := catalogSvc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		salesReport, err := salesSvc.Report(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summaryView{Catalog: catalogSummary, Sales: salesReport})
	}
}
