package variations

import (
	"maps"

	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// CartLine is what a product page asks the cart to add. Variation fields are set only
// when the selection matched a concrete variation.
type CartLine struct {
	ProductID        string
	Quantity         int
	Name             string
	Price            decimal.Decimal
	Image            string
	VariationSKU     string
	VariationOptions map[string]string
	VariationDisplay string
}

// BuildCartItem checks quantity against the minimum order and effective stock and builds
// the line to add. Empty and partial selections add the base product.
func BuildCartItem(p product.Product, s Selection, quantity int) (CartLine, error) {
	res := Resolve(p, s)

	if res.Stock <= 0 {
		return CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "this item is out of stock").
			WithDetails(map[string]any{"productId": p.ID, "available": 0})
	}
	minOrder := max(p.MinOrder, 1)
	if quantity < minOrder {
		return CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity is below the minimum order").
			WithDetails(map[string]any{"productId": p.ID, "minOrder": minOrder, "requested": quantity})
	}
	if quantity > res.Stock {
		return CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock").
			WithDetails(map[string]any{"productId": p.ID, "available": res.Stock, "requested": quantity})
	}

	line := CartLine{
		ProductID: p.ID,
		Quantity:  quantity,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image(),
	}
	if res.Match != nil {
		line.Price = res.Match.Price
		line.VariationSKU = res.Match.SKU
		line.VariationOptions = maps.Clone(res.Match.OptionValues)
		line.VariationDisplay = Display(res.Selection, p.VariationTypes)
		if res.Match.Image != "" {
			line.Image = res.Match.Image
		}
	}
	return line, nil
}

// RequireComplete returns the matched variation or a validation error naming what is missing.
func RequireComplete(p product.Product, s Selection) (product.Variation, error) {
	res := Resolve(p, s)
	if res.State != Complete {
		missing := make([]string, 0, len(p.VariationTypes))
		for _, vt := range p.VariationTypes {
			if res.Selection[vt.Name] == "" {
				missing = append(missing, vt.Name)
			}
		}
		return product.Variation{}, pkgerrors.New(pkgerrors.CodeValidation, "choose every option before continuing").
			WithDetails(map[string]any{"missing": missing})
	}
	if res.Match == nil {
		return product.Variation{}, pkgerrors.New(pkgerrors.CodeValidation, "this combination is not available").
			WithDetails(map[string]any{"selection": res.Selection})
	}
	return *res.Match, nil
}
