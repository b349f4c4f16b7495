package cart

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/angelmondragon/kbeauty-storefront/internal/variations"
	"github.com/shopspring/decimal"
)

// Item is one cart line as the commerce API stores it.
type Item struct {
	ProductID        string            `json:"productId"`
	Quantity         int               `json:"quantity"`
	Name             string            `json:"name"`
	Price            decimal.Decimal   `json:"price"`
	Image            string            `json:"image,omitempty"`
	VariationSKU     string            `json:"variationSku,omitempty"`
	VariationOptions map[string]string `json:"variationOptions,omitempty"`
	VariationDisplay string            `json:"variationDisplay,omitempty"`
}

// Key identifies a line: the same product in two variations is two lines.
type Key struct {
	ProductID    string
	VariationSKU string
}

func (i Item) Key() Key {
	return Key{ProductID: i.ProductID, VariationSKU: i.VariationSKU}
}

// ItemFromLine converts a resolved product page line into a cart item.
func ItemFromLine(line variations.CartLine) Item {
	return Item{
		ProductID:        line.ProductID,
		Quantity:         line.Quantity,
		Name:             line.Name,
		Price:            line.Price,
		Image:            line.Image,
		VariationSKU:     line.VariationSKU,
		VariationOptions: maps.Clone(line.VariationOptions),
		VariationDisplay: line.VariationDisplay,
	}
}

// UnmarshalJSON accepts productId or product, where product may be a bare id or a
// populated product document.
func (i *Item) UnmarshalJSON(data []byte) error {
	var wire struct {
		ProductID        string            `json:"productId"`
		Product          json.RawMessage   `json:"product"`
		Quantity         json.Number       `json:"quantity"`
		Name             string            `json:"name"`
		Price            json.RawMessage   `json:"price"`
		Image            string            `json:"image"`
		VariationSKU     string            `json:"variationSku"`
		VariationOptions map[string]string `json:"variationOptions"`
		VariationDisplay string            `json:"variationDisplay"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	ref := parseProductRef(wire.Product)
	*i = Item{
		ProductID:        strings.TrimSpace(wire.ProductID),
		Name:             wire.Name,
		Image:            wire.Image,
		VariationSKU:     strings.TrimSpace(wire.VariationSKU),
		VariationOptions: wire.VariationOptions,
		VariationDisplay: wire.VariationDisplay,
	}
	if i.ProductID == "" {
		i.ProductID = ref.id
	}
	if i.Name == "" {
		i.Name = ref.name
	}
	if i.Image == "" {
		i.Image = ref.image
	}
	if qty, err := wire.Quantity.Int64(); err == nil {
		i.Quantity = int(qty)
	}
	var price decimal.Decimal
	if len(wire.Price) > 0 && price.UnmarshalJSON(wire.Price) == nil {
		i.Price = price
	} else {
		i.Price = ref.price
	}
	if i.ProductID == "" {
		return errMissingProduct{}
	}
	return nil
}

type errMissingProduct struct{}

func (errMissingProduct) Error() string { return "cart item has no product id" }

type productRef struct {
	id    string
	name  string
	image string
	price decimal.Decimal
}

func parseProductRef(raw json.RawMessage) productRef {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return productRef{}
	}
	var id string
	if json.Unmarshal(raw, &id) == nil {
		return productRef{id: strings.TrimSpace(id)}
	}
	var doc struct {
		ID      string            `json:"id"`
		MongoID string            `json:"_id"`
		Name    string            `json:"name"`
		Price   decimal.Decimal   `json:"price"`
		Images  []json.RawMessage `json:"images"`
	}
	if json.Unmarshal(raw, &doc) != nil {
		return productRef{}
	}
	ref := productRef{id: strings.TrimSpace(doc.ID), name: doc.Name, price: doc.Price}
	if ref.id == "" {
		ref.id = strings.TrimSpace(doc.MongoID)
	}
	if len(doc.Images) > 0 {
		var url string
		if json.Unmarshal(doc.Images[0], &url) == nil {
			ref.image = url
		}
	}
	return ref
}

func cloneItems(items []Item) []Item {
	out := slices.Clone(items)
	for i := range out {
		out[i].VariationOptions = maps.Clone(out[i].VariationOptions)
	}
	if out == nil {
		out = []Item{}
	}
	return out
}
