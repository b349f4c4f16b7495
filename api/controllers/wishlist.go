package controllers

import (
	"net/http"

	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	"github.com/angelmondragon/kbeauty-storefront/internal/wishlist"
	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

type wishlistStores interface {
	For(userID string) *wishlist.Store
	Watch(user *auth.User)
}

// GetWishlist loads the caller's wishlist and keeps it in sync with later changes
// made from other sessions.
func GetWishlist(stores wishlistStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		items, err := stores.For(user.ID).LoadForUser(r.Context(), user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stores.Watch(user)
		responses.WriteSuccess(w, wishlistView{Items: items})
	}
}

// ToggleWishlist adds the product when absent and removes it when present.
func ToggleWishlist(stores wishlistStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		items, added, err := stores.For(user.ID).Toggle(r.Context(), user, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlistToggleView{Items: items, Added: added})
	}
}

func AddToWishlist(stores wishlistStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		items, err := stores.For(user.ID).Add(r.Context(), user, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlistView{Items: items})
	}
}

func RemoveFromWishlist(stores wishlistStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		items, err := stores.For(user.ID).Remove(r.Context(), user, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlistView{Items: items})
	}
}
