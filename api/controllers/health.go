package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/dealerdesk-backend/api/responses"
	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/redis"
)

const readinessTimeout = 3 * time.Second

// SchemaProbe reports which required tables are absent.
type SchemaProbe interface {
	MissingTables(ctx context.Context, tables ...string) ([]string, error)
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dealer-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings Postgres and Redis; either failing marks the API unready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dealer-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var failed *pkgerrors.Error
		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "unavailable"
				failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable")
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "unavailable"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable")
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		if failed != nil {
			responses.WriteError(r.Context(), logg, w, failed.WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

// HealthSchema reports whether every table the app needs has been provisioned.
func HealthSchema(probe SchemaProbe, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schema probe unavailable"))
			return
		}
		missing, err := probe.MissingTables(r.Context(), db.RequiredTables...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect schema"))
			return
		}
		if missing == nil {
			missing = []string{}
		}
		responses.WriteSuccess(w, map[string]any{
			"provisioned":   len(missing) == 0,
			"missingTables": missing,
		})
	}
}
