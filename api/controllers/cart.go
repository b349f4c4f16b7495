package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/kbeauty-storefront/api/middleware"
	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	"github.com/angelmondragon/kbeauty-storefront/api/validators"
	"github.com/angelmondragon/kbeauty-storefront/internal/cart"
	"github.com/angelmondragon/kbeauty-storefront/internal/variations"
	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

type cartStores interface {
	For(userID string) *cart.Store
}

type cartAdder interface {
	AddProduct(ctx context.Context, user *auth.User, productID string, selection variations.Selection, quantity int) ([]cart.Item, error)
}

type addToCartRequest struct {
	ProductID string            `json:"productId" validate:"required"`
	Quantity  int               `json:"quantity" validate:"required,min=1"`
	Selection map[string]string `json:"selection"`
}

type updateCartRequest struct {
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	VariationSKU string `json:"variationSku"`
}

// GetCart loads the caller's cart from the commerce API.
func GetCart(stores cartStores, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, newCartView(items))
	}
}

// AddToCart resolves the selection against the product and adds the line.
func AddToCart(svc cartAdder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		var payload addToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.AddProduct(r.Context(), user, strings.TrimSpace(payload.ProductID), variations.Selection(payload.Selection), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(items))
	}
}

// UpdateCartItem sets the quantity of one line.
func UpdateCartItem(stores cartStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		var payload updateCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		key := cart.Key{ProductID: productID, VariationSKU: strings.TrimSpace(payload.VariationSKU)}
		items, err := stores.For(user.ID).UpdateQuantity(r.Context(), user, key, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

// RemoveCartItem deletes one line. The variation is chosen with ?variationSku=.
func RemoveCartItem(stores cartStores, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		key := cart.Key{ProductID: productID, VariationSKU: strings.TrimSpace(r.URL.Query().Get("variationSku"))}
		items, err := stores.For(user.ID).Remove(r.Context(), user, key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(items))
	}
}

func requireUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*auth.User, bool) {
	user := middleware.UserFromContext(r.Context())
	if user == nil || user.ID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return nil, false
	}
	return user, true
}

func productIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
		return "", false
	}
	return productID, true
}
