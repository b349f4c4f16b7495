package product

import (
	"slices"
	"testing"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

func strPtr(s string) *string { return &s }

func testCategories() []categories.Category {
	return []categories.Category{
		{ID: "1", Name: "Skincare"},
		{ID: "2", Name: "Serums", ParentID: strPtr("1"), Level: 1},
		{ID: "3", Name: "Ampoules", ParentID: strPtr("2"), Level: 2},
		{ID: "9", Name: "Makeup"},
	}
}

func mk(id, name string, price int64, cat string, created time.Time) Product {
	return Product{
		ID:        id,
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Category:  categories.Ref{ID: cat},
		MinOrder:  1,
		Stock:     10,
		CreatedAt: created,
	}
}

func testProducts() []Product {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Product{
		mk("a", "Cell Repair Boost", 3200, "3", base.Add(48*time.Hour)),
		mk("b", "Oxyjet Treatment", 1500, "1", base.Add(24*time.Hour)),
		mk("c", "éclat Toner", 2100, "2", base.Add(72*time.Hour)),
		mk("d", "Lip Tint", 900, "9", base),
		mk("e", "barrier cream", 2500, "", base.Add(12*time.Hour)),
	}
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := FilterAndSort([]Product{
		mk("a", "Cell Repair Boost", 1, "", time.Time{}),
		mk("b", "Oxyjet Treatment", 1, "", time.Time{}),
	}, Filter{SearchText: "cell"}, nil)
	if !slices.Equal(ids(got), []string{"a"}) {
		t.Fatalf("expected only the cell product, got %v", ids(got))
	}
}

func TestSearchMatchesDescription(t *testing.T) {
	p := mk("x", "Mystery", 1, "", time.Time{})
	p.Description = "Hydrating CICA balm"
	got := FilterAndSort([]Product{p}, Filter{SearchText: "cica"}, nil)
	if len(got) != 1 {
		t.Fatalf("expected description match")
	}
}

func TestCategoryFilterIncludesDescendants(t *testing.T) {
	got := FilterAndSort(testProducts(), Filter{CategoryID: "1"}, testCategories())
	if !slices.Equal(ids(got), []string{"a", "b", "c"}) {
		t.Fatalf("unexpected subtree match %v", ids(got))
	}
	all := FilterAndSort(testProducts(), Filter{CategoryID: categories.AllID}, testCategories())
	if len(all) != 5 {
		t.Fatalf("all should match every product, got %d", len(all))
	}
}

func TestSearchAndCategoryCombine(t *testing.T) {
	got := FilterAndSort(testProducts(), Filter{CategoryID: "1", SearchText: "toner"}, testCategories())
	if !slices.Equal(ids(got), []string{"c"}) {
		t.Fatalf("unexpected combined match %v", ids(got))
	}
}

func TestSortKeys(t *testing.T) {
	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortFeatured, []string{"a", "b", "c", "d", "e"}},
		{SortNewest, []string{"c", "a", "b", "e", "d"}},
		{SortPriceAsc, []string{"d", "b", "c", "e", "a"}},
		{SortPriceDesc, []string{"a", "e", "c", "b", "d"}},
		{SortNameAsc, []string{"e", "a", "c", "d", "b"}},
		{SortNameDesc, []string{"b", "d", "c", "a", "e"}},
		{"bogus", []string{"a", "b", "c", "d", "e"}},
	}
	for _, tc := range cases {
		got := FilterAndSort(testProducts(), Filter{SortKey: tc.key}, nil)
		if !slices.Equal(ids(got), tc.want) {
			t.Fatalf("sort %s: expected %v got %v", tc.key, tc.want, ids(got))
		}
	}
}

func TestFilterAndSortIsIdempotent(t *testing.T) {
	for _, key := range []SortKey{SortFeatured, SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc} {
		f := Filter{SortKey: key, CategoryID: "1", SearchText: "e"}
		once := FilterAndSort(testProducts(), f, testCategories())
		twice := FilterAndSort(once, f, testCategories())
		if !slices.Equal(ids(once), ids(twice)) {
			t.Fatalf("sort %s not idempotent: %v vs %v", key, ids(once), ids(twice))
		}
	}
}

func TestPriceSortsAreReverses(t *testing.T) {
	asc := ids(FilterAndSort(testProducts(), Filter{SortKey: SortPriceAsc}, nil))
	desc := ids(FilterAndSort(testProducts(), Filter{SortKey: SortPriceDesc}, nil))
	slices.Reverse(asc)
	if !slices.Equal(asc, desc) {
		t.Fatalf("reversed price_asc %v should equal price_desc %v", asc, desc)
	}
}

func TestSortIsStableOnTies(t *testing.T) {
	products := []Product{
		mk("1", "Same", 100, "", time.Time{}),
		mk("2", "Same", 100, "", time.Time{}),
		mk("3", "Same", 100, "", time.Time{}),
	}
	for _, key := range []SortKey{SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc} {
		got := FilterAndSort(products, Filter{SortKey: key}, nil)
		if !slices.Equal(ids(got), []string{"1", "2", "3"}) {
			t.Fatalf("sort %s reordered ties: %v", key, ids(got))
		}
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	products := testProducts()
	before := ids(products)
	_ = FilterAndSort(products, Filter{SortKey: SortPriceAsc}, nil)
	if !slices.Equal(ids(products), before) {
		t.Fatalf("input was reordered")
	}
}

func TestPipelineUsesIndexAndLocale(t *testing.T) {
	p := NewPipeline(categories.NewIndex(testCategories()), language.Korean)
	got := p.Apply(testProducts(), Filter{CategoryID: "2", SortKey: SortPriceAsc})
	if !slices.Equal(ids(got), []string{"c", "a"}) {
		t.Fatalf("unexpected pipeline result %v", ids(got))
	}
}

func TestParseSortKey(t *testing.T) {
	if ParseSortKey(" PRICE_ASC ") != SortPriceAsc {
		t.Fatalf("expected case-insensitive parse")
	}
	if ParseSortKey("") != SortFeatured {
		t.Fatalf("empty should be featured")
	}
}
