package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

type tokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// userStateDropper forgets per-user state held in memory.
type userStateDropper interface {
	Drop(userID string)
}

// Logout ends the caller's session: the token is refused from now on and the cached
// cart and wishlist are dropped.
func Logout(revoker tokenRevoker, logg *logger.Logger, droppers ...userStateDropper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		if revoker != nil && user.TokenID != "" {
			if err := revoker.Revoke(r.Context(), user.TokenID, user.ExpiresAt); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
				return
			}
		}
		for _, d := range droppers {
			d.Drop(user.ID)
		}
		if logg != nil {
			logg.Info(r.Context(), "session.logged_out")
		}
		responses.WriteSuccess(w, map[string]bool{"loggedOut": true})
	}
}
