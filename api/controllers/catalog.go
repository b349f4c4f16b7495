package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/kbeauty-storefront/api/middleware"
	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	"github.com/angelmondragon/kbeauty-storefront/api/validators"
	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
	"github.com/angelmondragon/kbeauty-storefront/internal/variations"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

const (
	maxSearchLength = 200
	maxQueryInt     = 1_000_000
)

// Home serves the featured and new-arrival sections.
func Home(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		home, err := svc.Home(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user := middleware.UserFromContext(r.Context())
		cats := home.Categories
		if cats == nil {
			cats = []categories.Category{}
		}
		responses.WriteSuccess(w, homeView{
			Featured:    newProductViews(home.Featured, home.Index, user),
			NewArrivals: newProductViews(home.NewArrivals, home.Index, user),
			Categories:  cats,
			Notice:      home.Notice,
		})
	}
}

// Categories serves the flat category list and the nested menu tree.
func Categories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListProducts serves one page of the filtered, sorted catalog. Oversized page sizes are
// clamped by the service.
func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxQueryInt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "page_size", 0, 0, maxQueryInt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := product.Filter{
			SearchText: validators.SanitizeString(query.Get("q"), maxSearchLength),
			CategoryID: validators.SanitizeString(query.Get("category"), 0),
			SortKey:    product.ParseSortKey(query.Get("sort")),
		}

		result, err := svc.ListProducts(r.Context(), product.ListInput{Filter: filter, Page: page, PageSize: pageSize})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productListView{
			Items: newProductViews(result.Items, result.Index, middleware.UserFromContext(r.Context())),
			Page: pageView{
				Page:       result.Page,
				PageSize:   result.PageSize,
				TotalItems: result.TotalItems,
				TotalPages: result.TotalPages,
				PageReset:  result.PageReset,
			},
			Notice: result.Notice,
		})
	}
}

// GetProduct serves a product detail page.
func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithProductID(ctx, productID)
		}

		detail, err := svc.GetProduct(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user := middleware.UserFromContext(ctx)
		view := newProductView(detail.Product, detail.Index, user, true)
		view.CategoryName = detail.CategoryName
		breadcrumb := detail.Breadcrumb
		if breadcrumb == nil {
			breadcrumb = []categories.Category{}
		}
		responses.WriteSuccess(w, productDetailView{
			Product:    view,
			Breadcrumb: breadcrumb,
			Related:    newProductViews(detail.Related, detail.Index, user),
		})
	}
}

type selectionRequest struct {
	Selection map[string]string `json:"selection"`
}

// ResolveSelection evaluates a variation selection for a product page.
func ResolveSelection(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var payload selectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		p, err := svc.LoadProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res := variations.Resolve(*p, variations.Selection(payload.Selection))
		responses.WriteSuccess(w, newSelectionView(*p, res, middleware.UserFromContext(r.Context())))
	}
}
