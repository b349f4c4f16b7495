package product

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	"github.com/shopspring/decimal"
)

// Product is a normalized catalog entry. Decoding never fails on odd field shapes;
// only a record without an id is rejected.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Category        categories.Ref  `json:"category"`
	Stock           int             `json:"stock"`
	MinOrder        int             `json:"minOrder"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	CreatedAt       time.Time       `json:"createdAt"`
	HasVariations   bool            `json:"hasVariations"`
	VariationTypes  []VariationType `json:"variationTypes,omitempty"`
	Variations      []Variation     `json:"variations,omitempty"`
	Images          []string        `json:"images,omitempty"`
}

// VariationType is one selectable axis, e.g. Size.
type VariationType struct {
	Name    string            `json:"name"`
	Options []VariationOption `json:"options"`
}

// VariationOption is a value on an axis and its price delta against the base price.
type VariationOption struct {
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
}

// Variation is a concrete SKU for one combination of options.
type Variation struct {
	SKU          string            `json:"sku"`
	OptionValues map[string]string `json:"optionValues"`
	Price        decimal.Decimal   `json:"price"`
	Stock        int               `json:"stock"`
	Image        string            `json:"image,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// Image returns the first product image, or "".
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// SalePrice applies DiscountPercent to the base price for display.
func (p Product) SalePrice() decimal.Decimal {
	if !p.DiscountPercent.IsPositive() {
		return p.Price
	}
	factor := hundred.Sub(p.DiscountPercent).Div(hundred)
	return p.Price.Mul(factor).Round(2)
}

// TypeNamed returns the declared variation type with the given name.
func (p Product) TypeNamed(name string) (VariationType, bool) {
	for _, vt := range p.VariationTypes {
		if vt.Name == name {
			return vt, true
		}
	}
	return VariationType{}, false
}

// Option returns the named option of this type.
func (vt VariationType) Option(name string) (VariationOption, bool) {
	for _, opt := range vt.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return VariationOption{}, false
}

type errMissingID struct{}

func (errMissingID) Error() string { return "product record has no id" }

func (p *Product) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID              json.RawMessage   `json:"id"`
		MongoID         json.RawMessage   `json:"_id"`
		Name            json.RawMessage   `json:"name"`
		Description     json.RawMessage   `json:"description"`
		Price           json.RawMessage   `json:"price"`
		Category        json.RawMessage   `json:"category"`
		CategoryRef     json.RawMessage   `json:"categoryRef"`
		Stock           json.RawMessage   `json:"stock"`
		MinOrder        json.RawMessage   `json:"minOrder"`
		DiscountPercent json.RawMessage   `json:"discountPercent"`
		Discount        json.RawMessage   `json:"discount"`
		CreatedAt       json.RawMessage   `json:"createdAt"`
		HasVariations   json.RawMessage   `json:"hasVariations"`
		VariationTypes  []json.RawMessage `json:"variationTypes"`
		Variations      []json.RawMessage `json:"variations"`
		Images          json.RawMessage   `json:"images"`
		Image           json.RawMessage   `json:"image"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := Product{
		ID:          rawString(wire.ID),
		Name:        rawString(wire.Name),
		Description: rawString(wire.Description),
		Price:       nonNegative(rawDecimal(wire.Price)),
		Stock:       max(rawInt(wire.Stock), 0),
		MinOrder:    max(rawInt(wire.MinOrder), 1),
		CreatedAt:   rawTime(wire.CreatedAt),
	}
	if out.ID == "" {
		out.ID = rawString(wire.MongoID)
	}
	if out.ID == "" {
		return errMissingID{}
	}

	catRaw := wire.Category
	if len(bytes.TrimSpace(catRaw)) == 0 {
		catRaw = wire.CategoryRef
	}
	_ = json.Unmarshal(orNull(catRaw), &out.Category)

	discount := rawDecimal(wire.DiscountPercent)
	if len(bytes.TrimSpace(wire.DiscountPercent)) == 0 {
		discount = rawDecimal(wire.Discount)
	}
	out.DiscountPercent = clampPercent(discount)

	out.Images = rawStrings(wire.Images)
	if len(out.Images) == 0 {
		if img := rawString(wire.Image); img != "" {
			out.Images = []string{img}
		}
	}

	if !rawFalse(wire.HasVariations) {
		out.VariationTypes = decodeTypes(wire.VariationTypes)
		out.Variations = decodeVariations(wire.Variations, out.VariationTypes, out.Price)
	}
	out.HasVariations = len(out.VariationTypes) > 0

	*p = out
	return nil
}

func (o *VariationOption) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		*o = VariationOption{Name: rawString(trimmed)}
		return nil
	}
	var wire struct {
		Name            json.RawMessage `json:"name"`
		Value           json.RawMessage `json:"value"`
		PriceAdjustment json.RawMessage `json:"priceAdjustment"`
	}
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return err
	}
	name := rawString(wire.Name)
	if name == "" {
		name = rawString(wire.Value)
	}
	*o = VariationOption{Name: name, PriceAdjustment: rawDecimal(wire.PriceAdjustment)}
	return nil
}

func decodeTypes(raw []json.RawMessage) []VariationType {
	var types []VariationType
	seen := map[string]struct{}{}
	for _, rec := range raw {
		var wire struct {
			Name    json.RawMessage   `json:"name"`
			Options []json.RawMessage `json:"options"`
		}
		if err := json.Unmarshal(rec, &wire); err != nil {
			continue
		}
		vt := VariationType{Name: rawString(wire.Name)}
		if vt.Name == "" {
			continue
		}
		if _, dup := seen[vt.Name]; dup {
			continue
		}
		optSeen := map[string]struct{}{}
		for _, optRaw := range wire.Options {
			var opt VariationOption
			if err := json.Unmarshal(optRaw, &opt); err != nil || opt.Name == "" {
				continue
			}
			if _, dup := optSeen[opt.Name]; dup {
				continue
			}
			optSeen[opt.Name] = struct{}{}
			vt.Options = append(vt.Options, opt)
		}
		if len(vt.Options) == 0 {
			continue
		}
		seen[vt.Name] = struct{}{}
		types = append(types, vt)
	}
	return types
}

// decodeVariations keeps variations whose options name exactly one declared option per
// declared type. The first variation wins when two share a combination.
func decodeVariations(raw []json.RawMessage, types []VariationType, base decimal.Decimal) []Variation {
	if len(types) == 0 {
		return nil
	}
	var out []Variation
	combos := map[string]struct{}{}
	for _, rec := range raw {
		var wire struct {
			SKU          json.RawMessage   `json:"sku"`
			MongoID      json.RawMessage   `json:"_id"`
			OptionValues map[string]string `json:"optionValues"`
			Options      map[string]string `json:"options"`
			Price        json.RawMessage   `json:"price"`
			Stock        json.RawMessage   `json:"stock"`
			Image        json.RawMessage   `json:"image"`
		}
		if err := json.Unmarshal(rec, &wire); err != nil {
			continue
		}
		values := wire.OptionValues
		if len(values) == 0 {
			values = wire.Options
		}
		if !coversTypes(values, types) {
			continue
		}
		v := Variation{
			SKU:          rawString(wire.SKU),
			OptionValues: values,
			Stock:        max(rawInt(wire.Stock), 0),
			Image:        rawString(wire.Image),
		}
		if v.SKU == "" {
			v.SKU = rawString(wire.MongoID)
		}
		if v.SKU == "" {
			continue
		}
		if len(bytes.TrimSpace(wire.Price)) == 0 || bytes.Equal(bytes.TrimSpace(wire.Price), []byte("null")) {
			v.Price = nonNegative(adjustedPrice(base, types, values))
		} else {
			v.Price = nonNegative(rawDecimal(wire.Price))
		}
		key := comboKey(values, types)
		if _, dup := combos[key]; dup {
			continue
		}
		combos[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func coversTypes(values map[string]string, types []VariationType) bool {
	if len(values) != len(types) {
		return false
	}
	for _, vt := range types {
		if _, ok := vt.Option(values[vt.Name]); !ok {
			return false
		}
	}
	return true
}

func comboKey(values map[string]string, types []VariationType) string {
	parts := make([]string, len(types))
	for i, vt := range types {
		parts[i] = values[vt.Name]
	}
	return strings.Join(parts, "\x00")
}

func adjustedPrice(base decimal.Decimal, types []VariationType, values map[string]string) decimal.Decimal {
	price := base
	for _, vt := range types {
		if opt, ok := vt.Option(values[vt.Name]); ok {
			price = price.Add(opt.PriceAdjustment)
		}
	}
	return price
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func rawString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(orNull(raw), &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := rawString(item); s != "" {
			out = append(out, s)
			continue
		}
		var obj struct {
			URL json.RawMessage `json:"url"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			if s := rawString(obj.URL); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func rawDecimal(raw json.RawMessage) decimal.Decimal {
	s := rawString(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func rawInt(raw json.RawMessage) int {
	d := rawDecimal(raw)
	return int(d.Floor().IntPart())
}

// rawTime accepts RFC3339 strings, epoch milliseconds, and Firestore-style {_seconds}.
func rawTime(raw json.RawMessage) time.Time {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return time.Time{}
	}
	switch trimmed[0] {
	case '"':
		s := rawString(trimmed)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	case '{':
		var ts struct {
			Seconds  int64 `json:"_seconds"`
			Nanos    int64 `json:"_nanoseconds"`
			SecondsB int64 `json:"seconds"`
		}
		if err := json.Unmarshal(trimmed, &ts); err == nil {
			if ts.Seconds == 0 {
				ts.Seconds = ts.SecondsB
			}
			if ts.Seconds != 0 {
				return time.Unix(ts.Seconds, ts.Nanos).UTC()
			}
		}
	default:
		if ms, err := strconv.ParseInt(string(trimmed), 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	}
	return time.Time{}
}

// rawFalse is true only for an explicit false (or "false").
func rawFalse(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return bytes.Equal(trimmed, []byte("false")) || bytes.Equal(trimmed, []byte(`"false"`))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}
