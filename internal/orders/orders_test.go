package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubGetter struct {
	bodies map[string]string
	err    error
	tokens []string
}

func (s *stubGetter) Get(_ context.Context, path string, _ url.Values, token string) ([]byte, error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.bodies[path]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "not found")
	}
	return []byte(body), nil
}

const orderJSON = `{
	"_id": "o1",
	"orderNumber": 1042,
	"status": "shipped",
	"createdAt": "2025-03-01T10:00:00Z",
	"products": [
		{"product": {"_id": "p1", "name": "Snail Essence"}, "quantity": 2, "price": "21.50"},
		{"productId": "p2", "name": "Lip Tint", "quantity": 1, "price": 9, "total": 8, "variationDisplay": "Color: Red"}
	],
	"summary": {"subtotal": 51, "shippingCost": 5, "tax": 6.12, "total": 62.12},
	"customer": {"name": "Min", "email": "min@example.com"},
	"shippingAddress": {"street": "1 Main St", "city": "Seoul", "zip": "04524"}
}`

func shopper() *auth.User {
	return &auth.User{ID: "u1", Email: "u1@example.com", EmailVerified: true, Token: "tok"}
}

func TestOrderDecodingKeepsServerTotals(t *testing.T) {
	t.Parallel()
	var o Order
	require.NoError(t, json.Unmarshal([]byte(orderJSON), &o))

	require.Equal(t, "o1", o.ID)
	require.Equal(t, "1042", o.OrderNumber)
	require.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), o.CreatedAt)
	require.Len(t, o.Items, 2)
	require.Equal(t, "p1", o.Items[0].ProductID)
	require.Equal(t, "Snail Essence", o.Items[0].Name)
	require.True(t, o.Items[0].Total.Equal(decimal.RequireFromString("43")))
	require.True(t, o.Items[1].Total.Equal(decimal.NewFromInt(8)))
	require.True(t, o.Summary.Shipping.Equal(decimal.NewFromInt(5)))
	require.True(t, o.Summary.Total.Equal(decimal.RequireFromString("62.12")))
	require.Equal(t, "Min", o.CustomerName)
	require.Equal(t, []string{"1 Main St", "Seoul, 04524"}, o.ShippingAddress.Lines())
}

func TestListDropsMalformedOrders(t *testing.T) {
	t.Parallel()
	client := &stubGetter{bodies: map[string]string{
		"/orders": `{"orders": [` + orderJSON + `, "garbage", {"status": "no id"}]}`,
	}}
	svc, err := NewService(ServiceParams{Client: client})
	require.NoError(t, err)

	orders, err := svc.List(context.Background(), shopper())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, []string{"tok"}, client.tokens)
}

func TestOrdersRequireSignedInCaller(t *testing.T) {
	t.Parallel()
	client := &stubGetter{}
	svc, err := NewService(ServiceParams{Client: client})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	_, err = svc.Detail(context.Background(), shopper(), " ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Empty(t, client.tokens)
}

func TestDetailNotFoundPassesThrough(t *testing.T) {
	t.Parallel()
	svc, err := NewService(ServiceParams{Client: &stubGetter{}})
	require.NoError(t, err)

	_, err = svc.Detail(context.Background(), shopper(), "missing")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestInvoiceRendersPDF(t *testing.T) {
	t.Parallel()
	client := &stubGetter{bodies: map[string]string{"/orders/o1": `{"order": ` + orderJSON + `}`}}
	svc, err := NewService(ServiceParams{Client: client, Invoice: InvoiceOptions{CompanyName: "Seoul Glow", ContactEmail: "hi@example.com"}})
	require.NoError(t, err)

	pdf, order, err := svc.Invoice(context.Background(), shopper(), "o1")
	require.NoError(t, err)
	require.Equal(t, "1042", order.OrderNumber)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRenderInvoiceRequiresID(t *testing.T) {
	t.Parallel()
	_, err := RenderInvoice(Order{}, InvoiceOptions{})
	require.Error(t, err)
}
