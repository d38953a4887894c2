package controllers

import (
	"net/http"

	"github.com/mvalderrama/tillpoint/api/responses"
	"github.com/mvalderrama/tillpoint/pkg/config"
	"github.com/mvalderrama/tillpoint/pkg/db"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
	"github.com/mvalderrama/tillpoint/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TillPoint-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TillPoint-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "database not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
