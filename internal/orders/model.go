package orders

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order as the commerce API reports it. Amounts are display values;
// nothing here recomputes them.
type Order struct {
	ID              string     `json:"id"`
	OrderNumber     string     `json:"orderNumber"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	Items           []LineItem `json:"items"`
	Summary         Summary    `json:"summary"`
	CustomerName    string     `json:"customerName,omitempty"`
	CustomerEmail   string     `json:"customerEmail,omitempty"`
	ShippingAddress *Address   `json:"shippingAddress,omitempty"`
}

type LineItem struct {
	ProductID        string          `json:"productId"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	Total            decimal.Decimal `json:"total"`
	VariationDisplay string          `json:"variationDisplay,omitempty"`
}

// Summary carries the server-computed totals.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type Address struct {
	Name    string `json:"name,omitempty"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// Lines renders the address for print, skipping empty parts.
func (a *Address) Lines() []string {
	if a == nil {
		return nil
	}
	var lines []string
	for _, part := range []string{a.Name, a.Street, joinNonEmpty(", ", a.City, a.State, a.Zip), a.Country} {
		if strings.TrimSpace(part) != "" {
			lines = append(lines, part)
		}
	}
	return lines
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

type customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID              string          `json:"id"`
		MongoID         string          `json:"_id"`
		OrderNumber     json.RawMessage `json:"orderNumber"`
		Status          string          `json:"status"`
		CreatedAt       time.Time       `json:"createdAt"`
		Items           []LineItem      `json:"items"`
		Products        []LineItem      `json:"products"`
		Summary         *Summary        `json:"summary"`
		Customer        *customer       `json:"customer"`
		CustomerName    string          `json:"customerName"`
		CustomerEmail   string          `json:"customerEmail"`
		ShippingAddress *Address        `json:"shippingAddress"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*o = Order{
		ID:              strings.TrimSpace(wire.ID),
		OrderNumber:     scalar(wire.OrderNumber),
		Status:          wire.Status,
		CreatedAt:       wire.CreatedAt,
		Items:           wire.Items,
		CustomerName:    wire.CustomerName,
		CustomerEmail:   wire.CustomerEmail,
		ShippingAddress: wire.ShippingAddress,
	}
	if o.ID == "" {
		o.ID = strings.TrimSpace(wire.MongoID)
	}
	if o.OrderNumber == "" {
		o.OrderNumber = o.ID
	}
	if len(o.Items) == 0 {
		o.Items = wire.Products
	}
	if o.Items == nil {
		o.Items = []LineItem{}
	}
	if wire.Summary != nil {
		o.Summary = *wire.Summary
	}
	if wire.Customer != nil {
		if o.CustomerName == "" {
			o.CustomerName = wire.Customer.Name
		}
		if o.CustomerEmail == "" {
			o.CustomerEmail = wire.Customer.Email
		}
	}
	return nil
}

func (l *LineItem) UnmarshalJSON(data []byte) error {
	var wire struct {
		ProductID        string          `json:"productId"`
		Product          json.RawMessage `json:"product"`
		Name             string          `json:"name"`
		Quantity         json.Number     `json:"quantity"`
		Price            decimal.Decimal `json:"price"`
		Total            decimal.Decimal `json:"total"`
		VariationDisplay string          `json:"variationDisplay"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*l = LineItem{
		ProductID:        strings.TrimSpace(wire.ProductID),
		Name:             wire.Name,
		Price:            wire.Price,
		Total:            wire.Total,
		VariationDisplay: wire.VariationDisplay,
	}
	if qty, err := wire.Quantity.Int64(); err == nil {
		l.Quantity = int(qty)
	}
	if l.ProductID == "" {
		var ref struct {
			ID      string `json:"id"`
			MongoID string `json:"_id"`
			Name    string `json:"name"`
		}
		if json.Unmarshal(wire.Product, &ref) == nil {
			l.ProductID = strings.TrimSpace(ref.ID)
			if l.ProductID == "" {
				l.ProductID = strings.TrimSpace(ref.MongoID)
			}
			if l.Name == "" {
				l.Name = ref.Name
			}
		} else {
			l.ProductID = scalar(wire.Product)
		}
	}
	if l.Total.IsZero() {
		l.Total = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	}
	return nil
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var wire struct {
		Subtotal     decimal.Decimal  `json:"subtotal"`
		Shipping     *decimal.Decimal `json:"shipping"`
		ShippingCost decimal.Decimal  `json:"shippingCost"`
		Tax          decimal.Decimal  `json:"tax"`
		Discount     decimal.Decimal  `json:"discount"`
		Total        *decimal.Decimal `json:"total"`
		TotalAmount  decimal.Decimal  `json:"totalAmount"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*s = Summary{
		Subtotal: wire.Subtotal,
		Shipping: wire.ShippingCost,
		Tax:      wire.Tax,
		Discount: wire.Discount,
		Total:    wire.TotalAmount,
	}
	if wire.Shipping != nil {
		s.Shipping = *wire.Shipping
	}
	if wire.Total != nil {
		s.Total = *wire.Total
	}
	return nil
}

func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}
