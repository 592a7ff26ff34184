package controllers

import (
	"net/http"

	"github.com/salesdeskhq/salesdesk-backend/api/responses"
	"github.com/salesdeskhq/salesdesk-backend/pkg/config"
	"github.com/salesdeskhq/salesdesk-backend/pkg/db"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
	"github.com/salesdeskhq/salesdesk-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SalesDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database is reachable before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SalesDesk-Env", cfg.App.Env)

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "database client unavailable"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not reachable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
