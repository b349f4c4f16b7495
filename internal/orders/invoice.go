package orders

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/shopspring/decimal"
)

const invoiceDateLayout = "Jan 02, 2006"

// InvoiceOptions brands the invoice header.
type InvoiceOptions struct {
	CompanyName  string
	ContactEmail string
	Currency     string
}

var (
	ink   = color.Color{Red: 38, Green: 38, Blue: 34}
	muted = color.Color{Red: 121, Green: 119, Blue: 109}
)

// RenderInvoice draws an A4 invoice for the order. Totals are printed exactly as the
// server reported them.
func RenderInvoice(o Order, opts InvoiceOptions) ([]byte, error) {
	if o.ID == "" {
		return nil, errors.New("order id is required")
	}
	if opts.CompanyName == "" {
		opts.CompanyName = "K-Beauty Store"
	}
	if opts.Currency == "" {
		opts.Currency = "$"
	}
	money := func(d decimal.Decimal) string { return opts.Currency + d.StringFixed(2) }

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	textRow(m, 15, "INVOICE", props.Text{Size: 24, Style: consts.Bold, Color: ink})
	textRow(m, 10, opts.CompanyName, props.Text{Size: 16, Style: consts.Bold, Color: ink})
	if opts.ContactEmail != "" {
		textRow(m, 5, opts.ContactEmail, props.Text{Size: 9, Color: muted})
	}
	m.Row(8, func() {})

	m.Row(5, func() {
		m.Col(6, func() {
			m.Text("BILL TO", props.Text{Size: 8, Style: consts.Bold, Color: ink})
		})
		m.Col(6, func() {
			m.Text("INVOICE DETAILS", props.Text{Size: 8, Style: consts.Bold, Color: ink, Align: consts.Right})
		})
	})
	left := append([]string{o.CustomerName, o.CustomerEmail}, o.ShippingAddress.Lines()...)
	right := []string{"Invoice #" + o.OrderNumber}
	if !o.CreatedAt.IsZero() {
		right = append(right, "Date: "+o.CreatedAt.Format(invoiceDateLayout))
	}
	if o.Status != "" {
		right = append(right, "Status: "+o.Status)
	}
	for i := range max(len(left), len(right)) {
		m.Row(5, func() {
			m.Col(6, func() {
				if i < len(left) && left[i] != "" {
					m.Text(left[i], props.Text{Size: 9, Color: muted})
				}
			})
			m.Col(6, func() {
				if i < len(right) {
					m.Text(right[i], props.Text{Size: 9, Color: ink, Align: consts.Right})
				}
			})
		})
	}
	m.Row(8, func() {})

	header := props.Text{Size: 8, Style: consts.Bold, Color: ink}
	m.Row(6, func() {
		m.Col(6, func() { m.Text("Description", header) })
		m.Col(2, func() { m.Text("Qty", alignRight(header)) })
		m.Col(2, func() { m.Text("Price", alignRight(header)) })
		m.Col(2, func() { m.Text("Total", alignRight(header)) })
	})
	cell := props.Text{Size: 9, Color: ink}
	for _, item := range o.Items {
		name := item.Name
		if item.VariationDisplay != "" {
			name = fmt.Sprintf("%s (%s)", name, item.VariationDisplay)
		}
		m.Row(6, func() {
			m.Col(6, func() { m.Text(name, cell) })
			m.Col(2, func() { m.Text(strconv.Itoa(item.Quantity), alignRight(cell)) })
			m.Col(2, func() { m.Text(money(item.Price), alignRight(cell)) })
			m.Col(2, func() { m.Text(money(item.Total), alignRight(cell)) })
		})
	}
	m.Row(8, func() {})

	summaryRow(m, "Subtotal", money(o.Summary.Subtotal), false)
	summaryRow(m, "Shipping", money(o.Summary.Shipping), false)
	summaryRow(m, "Tax", money(o.Summary.Tax), false)
	if o.Summary.Discount.IsPositive() {
		summaryRow(m, "Discount", "-"+money(o.Summary.Discount), false)
	}
	summaryRow(m, "Total", money(o.Summary.Total), true)

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func textRow(m pdf.Maroto, height float64, text string, style props.Text) {
	m.Row(height, func() {
		m.Col(12, func() { m.Text(text, style) })
	})
}

func summaryRow(m pdf.Maroto, label, value string, bold bool) {
	style := props.Text{Size: 9, Color: ink, Align: consts.Right}
	if bold {
		style.Style = consts.Bold
		style.Size = 10
	}
	m.Row(5, func() {
		m.Col(8, func() {})
		m.Col(2, func() { m.Text(label, props.Text{Size: 9, Color: muted, Align: consts.Right}) })
		m.Col(2, func() { m.Text(value, style) })
	})
}

func alignRight(p props.Text) props.Text {
	p.Align = consts.Right
	return p
}
