package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	"github.com/angelmondragon/kbeauty-storefront/internal/orders"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

type ordersView struct {
	Orders []orders.Order `json:"orders"`
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []orders.Order{}
		}
		responses.WriteSuccess(w, ordersView{Orders: list})
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.Detail(r.Context(), user, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderInvoice streams the order as a PDF attachment.
func OrderInvoice(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}
		pdf, order, err := svc.Invoice(r.Context(), user, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoiceFilename(order, orderID)))
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

func invoiceFilename(order *orders.Order, fallback string) string {
	name := fallback
	if order != nil && order.OrderNumber != "" {
		name = order.OrderNumber
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
	return "invoice-" + name + ".pdf"
}

func orderIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
		return "", false
	}
	return orderID, true
}
