package controllers

import (
	"net/http"

	"github.com/lsalmeida/ecoeletronico-backend/api/responses"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/logger"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Eco-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Eco-Env", cfg.App.Env)

		checks := map[string]string{"database": "ok", "redis": "ok"}
		failed := false

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				checks["database"] = "unreachable"
				failed = true
				if logg != nil {
					logg.Error(r.Context(), "health.database", err)
				}
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				failed = true
				if logg != nil {
					logg.Error(r.Context(), "health.redis", err)
				}
			}
		}

		if failed {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), nil, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
