package product

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestProductDecodeNormalizesFields(t *testing.T) {
	body := `{
		"_id": "p1",
		"name": " Cell Repair Boost ",
		"description": "Ampoule",
		"price": "1000",
		"category": {"_id": "c2", "name": "Serums"},
		"stock": -4,
		"minOrder": 0,
		"discountPercent": 140,
		"createdAt": "2025-04-01T10:00:00Z",
		"images": [{"url": "https://cdn/p1.jpg"}, "https://cdn/p1b.jpg"],
		"hasVariations": true,
		"variationTypes": [
			{"name": "Size", "options": [{"name": "S", "priceAdjustment": 0}, {"name": "L", "priceAdjustment": 200}, "XL"]},
			{"name": "Size", "options": ["dup"]},
			{"name": "", "options": ["ignored"]}
		],
		"variations": [
			{"sku": "p1-s", "optionValues": {"Size": "S"}, "price": 1000, "stock": 3},
			{"sku": "p1-s-dup", "optionValues": {"Size": "S"}, "price": 900, "stock": 1},
			{"sku": "p1-bad", "optionValues": {"Size": "M"}, "price": 1100, "stock": 1},
			{"sku": "p1-xl", "optionValues": {"Size": "XL"}, "stock": 2}
		]
	}`

	var p Product
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if p.ID != "p1" || p.Name != "Cell Repair Boost" {
		t.Fatalf("unexpected identity %q %q", p.ID, p.Name)
	}
	if !p.Price.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected price %s", p.Price)
	}
	if p.Category.ID != "c2" || p.Category.Name != "Serums" {
		t.Fatalf("unexpected category %+v", p.Category)
	}
	if p.Stock != 0 || p.MinOrder != 1 {
		t.Fatalf("stock and min order should be clamped, got %d/%d", p.Stock, p.MinOrder)
	}
	if !p.DiscountPercent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("discount should cap at 100, got %s", p.DiscountPercent)
	}
	if want := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC); !p.CreatedAt.Equal(want) {
		t.Fatalf("unexpected created at %v", p.CreatedAt)
	}
	if !slices.Equal(p.Images, []string{"https://cdn/p1.jpg", "https://cdn/p1b.jpg"}) {
		t.Fatalf("unexpected images %v", p.Images)
	}

	if !p.HasVariations || len(p.VariationTypes) != 1 || len(p.VariationTypes[0].Options) != 3 {
		t.Fatalf("duplicate and unnamed variation types should be dropped: %+v", p.VariationTypes)
	}

	// duplicate combination and undeclared option are dropped
	if len(p.Variations) != 2 || p.Variations[0].SKU != "p1-s" || p.Variations[1].SKU != "p1-xl" {
		t.Fatalf("unexpected variations %+v", p.Variations)
	}
	if !p.Variations[1].Price.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("missing variation price should fall back to base plus adjustments, got %s", p.Variations[1].Price)
	}
}

func TestProductDecodeCategoryShapes(t *testing.T) {
	cases := map[string]string{
		`{"id":"p","category":"c1"}`:           "c1",
		`{"id":"p","categoryRef":{"id":"c2"}}`: "c2",
		`{"id":"p","category":["c3"]}`:         "",
		`{"id":"p","category":null}`:           "",
		`{"id":"p"}`:                           "",
	}
	for body, want := range cases {
		var p Product
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("%s: %v", body, err)
		}
		if p.Category.ID != want {
			t.Fatalf("%s: category %q, want %q", body, p.Category.ID, want)
		}
	}
}

func TestProductDecodeRejectsMissingID(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"name":"ghost"}`), &p); err == nil {
		t.Fatal("expected an error for a product without id")
	}
}

func TestProductWithoutVariationsFlag(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"id":"p","hasVariations":false,"variationTypes":[{"name":"Size","options":["S"]}]}`), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.HasVariations || len(p.VariationTypes) != 0 {
		t.Fatalf("variation types should be ignored when the flag is off: %+v", p.VariationTypes)
	}
}

func TestProductRoundTripThroughCache(t *testing.T) {
	var original Product
	if err := json.Unmarshal([]byte(`{"id":"p1","name":"Toner","price":12.5,"category":{"id":"c1","name":"Toners"},"stock":4,"minOrder":2,"createdAt":1714000000000,"variationTypes":[{"name":"Size","options":[{"name":"S","priceAdjustment":-1.5}]}],"variations":[{"sku":"t-s","optionValues":{"Size":"S"},"price":11,"stock":2}]}`), &original); err != nil {
		t.Fatalf("decode: %v", err)
	}

	payload, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded Product
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode cached: %v", err)
	}
	if decoded.ID != original.ID || decoded.Category != original.Category || decoded.MinOrder != original.MinOrder {
		t.Fatalf("cached product differs: %+v vs %+v", decoded, original)
	}
	if !decoded.Price.Equal(original.Price) || !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("price or timestamp changed through the cache")
	}
	if len(decoded.Variations) != 1 {
		t.Fatalf("expected one variation, got %d", len(decoded.Variations))
	}
	if !decoded.VariationTypes[0].Options[0].PriceAdjustment.Equal(decimal.RequireFromString("-1.5")) {
		t.Fatalf("negative adjustment lost: %s", decoded.VariationTypes[0].Options[0].PriceAdjustment)
	}
}

func TestDecodeProductsDropsMalformed(t *testing.T) {
	records := []json.RawMessage{
		json.RawMessage(`{"id":"p1","name":"ok"}`),
		json.RawMessage(`"not an object"`),
		json.RawMessage(`{"name":"no id"}`),
		json.RawMessage(`{"id":"p2","price":"abc"}`),
	}
	products, dropped := DecodeProducts(records)
	if len(products) != 2 || dropped != 2 {
		t.Fatalf("expected 2 kept and 2 dropped, got %d/%d", len(products), dropped)
	}
	if !products[1].Price.IsZero() {
		t.Fatalf("unparseable price should be zero, got %s", products[1].Price)
	}
}

func TestSalePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(1000), DiscountPercent: decimal.NewFromInt(15)}
	if got := p.SalePrice(); !got.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("sale price %s, want 850", got)
	}
	p.DiscountPercent = decimal.Zero
	if got := p.SalePrice(); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("sale price %s, want 1000", got)
	}
}
