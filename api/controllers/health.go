package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is a dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency concurrently and reports which ones failed.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		results := make(map[string]string, len(deps))
		errs := make(map[string]error, len(deps))
		var g errgroup.Group
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		outcomes := make([]error, len(names))
		for i, name := range names {
			if deps[name] == nil {
				continue
			}
			g.Go(func() error {
				outcomes[i] = deps[name].Ping(ctx)
				return nil
			})
		}
		_ = g.Wait()

		for i, name := range names {
			if outcomes[i] != nil {
				results[name] = "down"
				errs[name] = outcomes[i]
				continue
			}
			results[name] = "up"
		}

		if len(errs) > 0 {
			for name, err := range errs {
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", name), "health.dependency_down", err)
				}
			}
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(results))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": results})
	}
}
