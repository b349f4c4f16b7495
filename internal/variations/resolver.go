package variations

import (
	"slices"

	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
	"github.com/shopspring/decimal"
)

// AvailableOptionsFor returns the options of typeName still reachable given the other
// axes of the selection. Options outside the set should be shown disabled.
func AvailableOptionsFor(typeName string, s Selection, variations []product.Variation) map[string]struct{} {
	out := make(map[string]struct{})
	for _, v := range variations {
		if !agreesExcept(v, s, typeName) {
			continue
		}
		if opt := v.OptionValues[typeName]; opt != "" {
			out[opt] = struct{}{}
		}
	}
	return out
}

func agreesExcept(v product.Variation, s Selection, skip string) bool {
	for typeName, option := range s {
		if typeName == skip {
			continue
		}
		if v.OptionValues[typeName] != option {
			return false
		}
	}
	return true
}

// FindMatchingVariation returns the variation whose option values equal the selection
// exactly. Combinations are unique per product, so there is at most one.
func FindMatchingVariation(s Selection, variations []product.Variation) (product.Variation, bool) {
	if len(s) == 0 {
		return product.Variation{}, false
	}
	for _, v := range variations {
		if len(v.OptionValues) != len(s) {
			continue
		}
		if agreesExcept(v, s, "") {
			return v, true
		}
	}
	return product.Variation{}, false
}

// EffectivePrice is the matched variation's price for a complete selection, otherwise the
// base price plus the adjustments of the selected options.
func EffectivePrice(p product.Product, s Selection) decimal.Decimal {
	clean, _ := sanitize(p, s)
	if v, ok := completeMatch(p, clean); ok {
		return v.Price
	}
	return p.Price.Add(adjustments(p, clean))
}

// EffectiveStock is the matched variation's stock, otherwise the product's stock.
func EffectiveStock(p product.Product, s Selection) int {
	clean, _ := sanitize(p, s)
	if v, ok := completeMatch(p, clean); ok {
		return v.Stock
	}
	return p.Stock
}

func completeMatch(p product.Product, clean Selection) (product.Variation, bool) {
	if clean.State(p.VariationTypes) != Complete {
		return product.Variation{}, false
	}
	return FindMatchingVariation(clean, p.Variations)
}

func adjustments(p product.Product, clean Selection) decimal.Decimal {
	total := decimal.Zero
	for _, vt := range p.VariationTypes {
		if opt, ok := vt.Option(clean[vt.Name]); ok {
			total = total.Add(opt.PriceAdjustment)
		}
	}
	return total
}

// Option is one choice on an axis as a product page renders it.
type Option struct {
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	Available       bool            `json:"available"`
	Selected        bool            `json:"selected"`
}

// Axis is a variation type with its options in declared order.
type Axis struct {
	Name     string   `json:"name"`
	Selected string   `json:"selected,omitempty"`
	Options  []Option `json:"options"`
}

// Resolution bundles everything a product page needs for one selection.
type Resolution struct {
	State       State
	Selection   Selection
	Match       *product.Variation
	Price       decimal.Decimal
	Adjustments decimal.Decimal
	Stock       int
	Axes        []Axis
	// Ignored lists "Type: Option" entries that name an undeclared type or option.
	Ignored []string
}

// Resolve evaluates a selection against a product.
func Resolve(p product.Product, s Selection) Resolution {
	clean, ignored := sanitize(p, s)
	slices.Sort(ignored)

	res := Resolution{
		State:       clean.State(p.VariationTypes),
		Selection:   clean,
		Adjustments: adjustments(p, clean),
		Stock:       p.Stock,
		Axes:        make([]Axis, 0, len(p.VariationTypes)),
		Ignored:     ignored,
	}
	res.Price = p.Price.Add(res.Adjustments)
	if v, ok := completeMatch(p, clean); ok {
		res.Match = &v
		res.Price = v.Price
		res.Stock = v.Stock
	}

	for _, vt := range p.VariationTypes {
		available := AvailableOptionsFor(vt.Name, clean, p.Variations)
		axis := Axis{Name: vt.Name, Selected: clean[vt.Name], Options: make([]Option, 0, len(vt.Options))}
		for _, opt := range vt.Options {
			_, ok := available[opt.Name]
			axis.Options = append(axis.Options, Option{
				Name:            opt.Name,
				PriceAdjustment: opt.PriceAdjustment,
				Available:       ok,
				Selected:        clean[vt.Name] == opt.Name,
			})
		}
		res.Axes = append(res.Axes, axis)
	}
	return res
}
