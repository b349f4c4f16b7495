package controllers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/kbeauty-storefront/internal/cart"
	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
	"github.com/angelmondragon/kbeauty-storefront/internal/variations"
	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
)

// productView is the wire shape of a product. Prices are omitted and PriceHidden set
// for callers that may not see them.
type productView struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Image           string              `json:"image,omitempty"`
	Images          []string            `json:"images,omitempty"`
	Category        categories.Ref      `json:"category"`
	CategoryName    string              `json:"categoryName"`
	Price           *decimal.Decimal    `json:"price,omitempty"`
	SalePrice       *decimal.Decimal    `json:"salePrice,omitempty"`
	DiscountPercent *decimal.Decimal    `json:"discountPercent,omitempty"`
	PriceHidden     bool                `json:"priceHidden"`
	Stock           int                 `json:"stock"`
	MinOrder        int                 `json:"minOrder"`
	CreatedAt       *time.Time          `json:"createdAt,omitempty"`
	HasVariations   bool                `json:"hasVariations"`
	VariationTypes  []variationTypeView `json:"variationTypes,omitempty"`
	Variations      []variationView     `json:"variations,omitempty"`
}

type variationTypeView struct {
	Name    string                `json:"name"`
	Options []variationOptionView `json:"options"`
}

type variationOptionView struct {
	Name            string           `json:"name"`
	PriceAdjustment *decimal.Decimal `json:"priceAdjustment,omitempty"`
}

type variationView struct {
	SKU          string            `json:"sku"`
	OptionValues map[string]string `json:"optionValues"`
	Price        *decimal.Decimal  `json:"price,omitempty"`
	Stock        int               `json:"stock"`
	Image        string            `json:"image,omitempty"`
}

func priceRef(d decimal.Decimal, visible bool) *decimal.Decimal {
	if !visible {
		return nil
	}
	return &d
}

func newProductView(p product.Product, idx *categories.Index, user *auth.User, withVariations bool) productView {
	visible := auth.CanSeePrices(user)
	view := productView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Image:         p.Image(),
		Category:      p.Category,
		CategoryName:  idx.Name(p.Category),
		Price:         priceRef(p.Price, visible),
		PriceHidden:   !visible,
		Stock:         p.Stock,
		MinOrder:      p.MinOrder,
		HasVariations: p.HasVariations,
	}
	if visible && p.DiscountPercent.IsPositive() {
		view.SalePrice = priceRef(p.SalePrice(), true)
		view.DiscountPercent = priceRef(p.DiscountPercent, true)
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		view.CreatedAt = &created
	}
	if !withVariations {
		return view
	}

	view.Images = p.Images
	for _, vt := range p.VariationTypes {
		tv := variationTypeView{Name: vt.Name, Options: make([]variationOptionView, 0, len(vt.Options))}
		for _, opt := range vt.Options {
			tv.Options = append(tv.Options, variationOptionView{Name: opt.Name, PriceAdjustment: priceRef(opt.PriceAdjustment, visible)})
		}
		view.VariationTypes = append(view.VariationTypes, tv)
	}
	for _, v := range p.Variations {
		view.Variations = append(view.Variations, variationView{
			SKU:          v.SKU,
			OptionValues: v.OptionValues,
			Price:        priceRef(v.Price, visible),
			Stock:        v.Stock,
			Image:        v.Image,
		})
	}
	return view
}

func newProductViews(items []product.Product, idx *categories.Index, user *auth.User) []productView {
	out := make([]productView, 0, len(items))
	for _, p := range items {
		out = append(out, newProductView(p, idx, user, false))
	}
	return out
}

type selectionView struct {
	State       string               `json:"state"`
	Selection   variations.Selection `json:"selection"`
	Display     string               `json:"display,omitempty"`
	SKU         string               `json:"sku,omitempty"`
	Image       string               `json:"image,omitempty"`
	Price       *decimal.Decimal     `json:"price,omitempty"`
	Adjustments *decimal.Decimal     `json:"adjustments,omitempty"`
	PriceHidden bool                 `json:"priceHidden"`
	Stock       int                  `json:"stock"`
	Axes        []variations.Axis    `json:"axes"`
	Ignored     []string             `json:"ignored,omitempty"`
}

func newSelectionView(p product.Product, res variations.Resolution, user *auth.User) selectionView {
	visible := auth.CanSeePrices(user)
	view := selectionView{
		State:       res.State.String(),
		Selection:   res.Selection,
		Display:     variations.Display(res.Selection, p.VariationTypes),
		Price:       priceRef(res.Price, visible),
		Adjustments: priceRef(res.Adjustments, visible),
		PriceHidden: !visible,
		Stock:       res.Stock,
		Axes:        res.Axes,
		Ignored:     res.Ignored,
	}
	if res.Match != nil {
		view.SKU = res.Match.SKU
		view.Image = res.Match.Image
	}
	if !visible {
		axes := make([]variations.Axis, 0, len(res.Axes))
		for _, axis := range res.Axes {
			opts := make([]variations.Option, 0, len(axis.Options))
			for _, opt := range axis.Options {
				opt.PriceAdjustment = decimal.Zero
				opts = append(opts, opt)
			}
			axis.Options = opts
			axes = append(axes, axis)
		}
		view.Axes = axes
	}
	return view
}

type cartView struct {
	Items     []cart.Item     `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// newCartView sums line prices for display only; checkout totals come from the commerce API.
func newCartView(items []cart.Item) cartView {
	view := cartView{Items: items, Subtotal: decimal.Zero}
	if view.Items == nil {
		view.Items = []cart.Item{}
	}
	for _, item := range view.Items {
		view.ItemCount += item.Quantity
		view.Subtotal = view.Subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return view
}

type pageView struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	PageReset  bool `json:"pageReset"`
}

type productListView struct {
	Items  []productView `json:"items"`
	Page   pageView      `json:"pagination"`
	Notice string        `json:"notice,omitempty"`
}

type productDetailView struct {
	Product    productView           `json:"product"`
	Breadcrumb []categories.Category `json:"breadcrumb"`
	Related    []productView         `json:"related"`
}

type homeView struct {
	Featured    []productView         `json:"featured"`
	NewArrivals []productView         `json:"newArrivals"`
	Categories  []categories.Category `json:"categories"`
	Notice      string                `json:"notice,omitempty"`
}

type wishlistView struct {
	Items []string `json:"items"`
}

type wishlistToggleView struct {
	Items []string `json:"items"`
	Added bool     `json:"added"`
}
