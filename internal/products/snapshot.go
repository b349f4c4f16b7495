package product

import (
	"context"
	"encoding/json"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/internal/categories"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/redis"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const catalogFlightKey = "catalog"

// Snapshot is the cached form of the catalog.
type Snapshot struct {
	Products   []Product             `json:"products"`
	Categories []categories.Category `json:"categories"`
	FetchedAt  time.Time             `json:"fetchedAt"`
}

// Catalog is a snapshot plus its category index. Treat it as read-only.
type Catalog struct {
	Snapshot
	Index *categories.Index
}

func newCatalog(s Snapshot) *Catalog {
	return &Catalog{Snapshot: s, Index: categories.NewIndex(s.Categories)}
}

type productSource interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
}

type categorySource interface {
	List(ctx context.Context) ([]categories.RawCategory, error)
	Get(ctx context.Context, id string) (*categories.RawCategory, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// catalogLoader serves the catalog from Redis, falling back to the commerce API.
// Concurrent misses share one upstream fetch.
type catalogLoader struct {
	products   productSource
	categories categorySource
	cache      snapshotCache
	cacheKey   string
	ttl        time.Duration
	logg       *logger.Logger
	now        func() time.Time
	group      singleflight.Group
}

func (l *catalogLoader) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog load cancelled")
	}
	ch := l.group.DoChan(catalogFlightKey, func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "catalog load cancelled")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

func (l *catalogLoader) load(ctx context.Context) (*Catalog, error) {
	if cached, ok := l.readCache(ctx); ok {
		return newCatalog(cached), nil
	}

	var (
		products     []Product
		rawCats      []categories.RawCategory
		categoriesOK = true
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := l.products.List(gctx)
		if err != nil {
			return err
		}
		products = list
		return nil
	})
	g.Go(func() error {
		list, err := l.categories.List(gctx)
		if err != nil {
			// Products stay browsable without category names.
			categoriesOK = false
			l.logg.Error(ctx, "catalog.categories_fetch_failed", err)
			return nil
		}
		rawCats = list
		return nil
	})
	if err := g.Wait(); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}

	snap := Snapshot{
		Products:   products,
		Categories: categories.Normalize(rawCats),
		FetchedAt:  l.now().UTC(),
	}
	if categoriesOK {
		l.writeCache(ctx, snap)
	}
	return newCatalog(snap), nil
}

func (l *catalogLoader) readCache(ctx context.Context) (Snapshot, bool) {
	if l.cache == nil {
		return Snapshot{}, false
	}
	payload, err := l.cache.Get(ctx, l.cacheKey)
	if err != nil {
		if !redis.IsMiss(err) {
			l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "catalog.cache_read_failed")
		}
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "catalog.cache_decode_failed")
		return Snapshot{}, false
	}
	return snap, true
}

func (l *catalogLoader) writeCache(ctx context.Context, snap Snapshot) {
	if l.cache == nil || l.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "catalog.cache_encode_failed")
		return
	}
	if err := l.cache.Set(ctx, l.cacheKey, payload, l.ttl); err != nil {
		l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "catalog.cache_write_failed")
	}
}
