package product

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/upstream"
)

type upstreamGetter interface {
	Get(ctx context.Context, path string, query url.Values, token string) ([]byte, error)
}

// Repository reads products from the commerce API.
type Repository struct {
	client upstreamGetter
	logg   *logger.Logger
}

func NewRepository(client upstreamGetter, logg *logger.Logger) *Repository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Repository{client: client, logg: logg}
}

// List fetches GET /products. A malformed record is dropped and logged; it never fails the list.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	body, err := r.client.Get(ctx, "/products", nil, "")
	if err != nil {
		return nil, err
	}
	records, err := upstream.DecodeList(body, "products")
	if err != nil {
		return nil, err
	}
	products, dropped := DecodeProducts(records)
	if dropped > 0 {
		r.logg.Warn(r.logg.WithField(ctx, "dropped", dropped), "products.malformed_records")
	}
	return products, nil
}

// Get fetches GET /products/:id. The response is rejected when it describes another product.
func (r *Repository) Get(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	body, err := r.client.Get(ctx, "/products/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	var p Product
	if err := upstream.DecodeJSON(upstream.DecodeObject(body, "product"), &p); err != nil {
		return nil, err
	}
	if p.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream answered for a different product").
			WithDetails(map[string]any{"requested": id, "received": p.ID})
	}
	return &p, nil
}

// DecodeProducts decodes records one by one and reports how many were dropped.
func DecodeProducts(records []json.RawMessage) ([]Product, int) {
	products := make([]Product, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var p Product
		if err := json.Unmarshal(rec, &p); err != nil {
			dropped++
			continue
		}
		products = append(products, p)
	}
	return products, dropped
}
