package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/upstream"
)

type upstreamGetter interface {
	Get(ctx context.Context, path string, query url.Values, token string) ([]byte, error)
}

// Service reads the caller's orders from the commerce API.
type Service interface {
	List(ctx context.Context, user *auth.User) ([]Order, error)
	Detail(ctx context.Context, user *auth.User, orderID string) (*Order, error)
	Invoice(ctx context.Context, user *auth.User, orderID string) ([]byte, *Order, error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Client  upstreamGetter
	Invoice InvoiceOptions
	Logger  *logger.Logger
}

type service struct {
	client  upstreamGetter
	invoice InvoiceOptions
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{client: params.Client, invoice: params.Invoice, logg: logg}, nil
}

// List passes GET /orders through. Malformed records are dropped.
func (s *service) List(ctx context.Context, user *auth.User) ([]Order, error) {
	if err := auth.RequireShopper(user, false); err != nil {
		return nil, err
	}
	body, err := s.client.Get(ctx, "/orders", nil, user.Token)
	if err != nil {
		return nil, err
	}
	records, err := upstream.DecodeList(body, "orders")
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var o Order
		if err := json.Unmarshal(rec, &o); err != nil || o.ID == "" {
			dropped++
			continue
		}
		orders = append(orders, o)
	}
	if dropped > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "dropped", dropped), "orders.malformed_records")
	}
	return orders, nil
}

// Detail passes GET /orders/:id through.
func (s *service) Detail(ctx context.Context, user *auth.User, orderID string) (*Order, error) {
	if err := auth.RequireShopper(user, false); err != nil {
		return nil, err
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	body, err := s.client.Get(ctx, "/orders/"+url.PathEscape(orderID), nil, user.Token)
	if err != nil {
		return nil, err
	}
	var o Order
	if err := upstream.DecodeJSON(upstream.DecodeObject(body, "order"), &o); err != nil {
		return nil, err
	}
	if o.ID == "" {
		o.ID = orderID
	}
	return &o, nil
}

// Invoice loads the order and renders it as a PDF.
func (s *service) Invoice(ctx context.Context, user *auth.User, orderID string) ([]byte, *Order, error) {
	o, err := s.Detail(ctx, user, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.CustomerEmail == "" {
		o.CustomerEmail = user.Email
	}
	pdf, err := RenderInvoice(*o, s.invoice)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", o.ID), "orders.invoice_render_failed", err)
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice")
	}
	return pdf, o, nil
}
