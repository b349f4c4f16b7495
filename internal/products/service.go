package product

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/pagination"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

// CatalogUnavailableNotice is shown instead of an error when the catalog cannot be fetched.
const CatalogUnavailableNotice = "We couldn't load products right now. Please try again in a moment."

// Service exposes storefront catalog reads.
type Service interface {
	ListProducts(ctx context.Context, input ListInput) (*ListResult, error)
	GetProduct(ctx context.Context, id string) (*ProductDetail, error)
	LoadProduct(ctx context.Context, id string) (*Product, error)
	Home(ctx context.Context) (*HomeSections, error)
	Categories(ctx context.Context) (*CategoryListing, error)
}

// ListInput is a listing request. Page and PageSize are normalized by the service.
type ListInput struct {
	Filter   Filter
	Page     int
	PageSize int
}

// ListResult is one page of the filtered, sorted catalog.
type ListResult struct {
	Items      []Product
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
	// PageReset is set when the requested page no longer exists and page 1 was served.
	PageReset bool
	Notice    string
	Index     *categories.Index
}

// ProductDetail is a product plus the context a detail page renders around it.
type ProductDetail struct {
	Product      Product
	CategoryName string
	Breadcrumb   []categories.Category
	Related      []Product
	Index        *categories.Index
}

type HomeSections struct {
	Featured    []Product
	NewArrivals []Product
	Categories  []categories.Category
	Notice      string
	Index       *categories.Index
}

type CategoryListing struct {
	Categories []categories.Category
	Tree       []categories.Node
	Notice     string
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Products   productSource
	Categories categorySource
	Cache      snapshotCache
	CacheKey   string
	Catalog    config.CatalogConfig
	Logger     *logger.Logger
}

type service struct {
	products   productSource
	categories categorySource
	loader     *catalogLoader
	cfg        config.CatalogConfig
	locale     language.Tag
	logg       *logger.Logger
	details    singleflight.Group
}

// NewService builds the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category source required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	locale, err := language.Parse(params.Catalog.Locale)
	if err != nil {
		locale = language.English
	}
	cacheKey := params.CacheKey
	if cacheKey == "" {
		cacheKey = "sf:catalog:snapshot"
	}
	return &service{
		products:   params.Products,
		categories: params.Categories,
		loader: &catalogLoader{
			products:   params.Products,
			categories: params.Categories,
			cache:      params.Cache,
			cacheKey:   cacheKey,
			ttl:        params.Catalog.SnapshotTTL,
			logg:       logg,
			now:        time.Now,
		},
		cfg:    params.Catalog,
		locale: locale,
		logg:   logg,
	}, nil
}

// ListProducts filters, sorts and paginates the catalog. A fetch failure yields an empty
// page with a notice rather than an error.
func (s *service) ListProducts(ctx context.Context, input ListInput) (*ListResult, error) {
	size := pagination.NormalizeLimitWith(input.PageSize, s.cfg.PageSize, s.cfg.MaxPageSize)

	catalog, err := s.loader.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		s.logg.Error(ctx, "catalog.list_unavailable", err)
		return &ListResult{Items: []Product{}, Page: 1, PageSize: size, Notice: CatalogUnavailableNotice}, nil
	}

	filtered := NewPipeline(catalog.Index, s.locale).Apply(catalog.Products, input.Filter)
	pageNumber, reset := pagination.Resolve(len(filtered), input.Page, size)
	page := pagination.Paginate(filtered, pageNumber, size)

	return &ListResult{
		Items:      page.Items,
		Page:       pageNumber,
		PageSize:   size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		PageReset:  reset,
		Index:      catalog.Index,
	}, nil
}

// LoadProduct fetches one product. Concurrent requests for the same id share a single
// upstream call, and each caller stops waiting when its own context ends.
func (s *service) LoadProduct(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	ch := s.details.DoChan(id, func() (any, error) {
		return s.products.Get(context.WithoutCancel(ctx), id)
	})
	select {
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "product load cancelled")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p := res.Val.(*Product)
		if p == nil || p.ID != id {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "stale product response discarded")
		}
		clone := *p
		return &clone, nil
	}
}

// GetProduct loads a product with its category name, breadcrumb, and related products.
func (s *service) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	p, err := s.LoadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{Product: *p, Related: []Product{}}

	catalog, err := s.loader.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		s.logg.Warn(s.logg.WithProductID(ctx, id), "catalog.detail_without_catalog")
		catalog = newCatalog(Snapshot{})
	}
	detail.Index = catalog.Index
	detail.Breadcrumb = catalog.Index.Ancestors(p.Category.ID)
	detail.CategoryName = s.categoryName(ctx, catalog.Index, p.Category)
	detail.Related = s.related(catalog, *p)
	return detail, nil
}

func (s *service) categoryName(ctx context.Context, idx *categories.Index, ref categories.Ref) string {
	name := idx.Name(ref)
	if name != categories.Uncategorized || ref.ID == "" {
		return name
	}
	raw, err := s.categories.Get(ctx, ref.ID)
	if err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "category_id", ref.ID), "catalog.category_lookup_failed")
		}
		return categories.Uncategorized
	}
	return categories.ResolveCategoryName(ref, categories.Normalize([]categories.RawCategory{*raw}))
}

func (s *service) related(catalog *Catalog, p Product) []Product {
	limit := s.cfg.RelatedCount
	if limit <= 0 || p.Category.ID == "" {
		return []Product{}
	}
	matches := NewPipeline(catalog.Index, s.locale).Apply(catalog.Products, Filter{CategoryID: p.Category.ID})
	out := make([]Product, 0, limit)
	for _, candidate := range matches {
		if candidate.ID == p.ID {
			continue
		}
		out = append(out, candidate)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Home builds the marketing homepage sections.
func (s *service) Home(ctx context.Context) (*HomeSections, error) {
	catalog, err := s.loader.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		s.logg.Error(ctx, "catalog.home_unavailable", err)
		return &HomeSections{
			Featured:    []Product{},
			NewArrivals: []Product{},
			Categories:  []categories.Category{},
			Notice:      CatalogUnavailableNotice,
		}, nil
	}

	size := s.cfg.HomeSectionSize
	if size <= 0 {
		size = 8
	}
	pipeline := NewPipeline(catalog.Index, s.locale)
	featured := pipeline.Apply(catalog.Products, Filter{SortKey: SortFeatured})
	newest := pipeline.Apply(catalog.Products, Filter{SortKey: SortNewest})

	return &HomeSections{
		Featured:    slices.Clone(featured[:min(size, len(featured))]),
		NewArrivals: slices.Clone(newest[:min(size, len(newest))]),
		Categories:  nonNilCategories(catalog.Index.Roots()),
		Index:       catalog.Index,
	}, nil
}

// Categories returns the normalized category list and its tree.
func (s *service) Categories(ctx context.Context) (*CategoryListing, error) {
	catalog, err := s.loader.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		s.logg.Error(ctx, "catalog.categories_unavailable", err)
		return &CategoryListing{Categories: []categories.Category{}, Tree: []categories.Node{}, Notice: CatalogUnavailableNotice}, nil
	}
	return &CategoryListing{
		Categories: nonNilCategories(catalog.Index.Categories()),
		Tree:       catalog.Index.Tree(),
	}, nil
}

func nonNilCategories(cats []categories.Category) []categories.Category {
	if cats == nil {
		return []categories.Category{}
	}
	return cats
}

// IsNotFound reports whether err means the product does not exist upstream.
func IsNotFound(err error) bool {
	var typed *pkgerrors.Error
	return errors.As(err, &typed) && typed.Code() == pkgerrors.CodeNotFound
}
