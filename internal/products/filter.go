package product

import (
	"slices"
	"strings"

	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey names a listing order.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

// ParseSortKey maps user input onto a known key. Unknown values mean featured.
func ParseSortKey(value string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(value))); key {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return key
	default:
		return SortFeatured
	}
}

// Filter is the listing query. An empty CategoryID means categories.AllID.
type Filter struct {
	SearchText string
	CategoryID string
	SortKey    SortKey
}

// FilterAndSort returns the products matching f in the requested order. It does not
// modify products; ties keep their input order.
func FilterAndSort(products []Product, f Filter, cats []categories.Category) []Product {
	return apply(products, f, categories.SubtreeMatcher(f.CategoryID, cats), language.English)
}

// Pipeline runs FilterAndSort against one catalog snapshot's category index with a
// configured collation locale.
type Pipeline struct {
	index  *categories.Index
	locale language.Tag
}

func NewPipeline(index *categories.Index, locale language.Tag) Pipeline {
	return Pipeline{index: index, locale: locale}
}

func (p Pipeline) Apply(products []Product, f Filter) []Product {
	return apply(products, f, p.index.Matcher(f.CategoryID), p.locale)
}

func apply(products []Product, f Filter, inCategory func(categories.Ref) bool, locale language.Tag) []Product {
	needle := strings.ToLower(strings.TrimSpace(f.SearchText))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !matchesSearch(p, needle) || !inCategory(p.Category) {
			continue
		}
		out = append(out, p)
	}

	switch ParseSortKey(string(f.SortKey)) {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortNameAsc, SortNameDesc:
		// collate.Collator is not safe for concurrent use; one per call.
		col := collate.New(locale, collate.IgnoreCase)
		desc := ParseSortKey(string(f.SortKey)) == SortNameDesc
		slices.SortStableFunc(out, func(a, b Product) int {
			if desc {
				return col.CompareString(b.Name, a.Name)
			}
			return col.CompareString(a.Name, b.Name)
		})
	}
	return out
}

func matchesSearch(p Product, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}
