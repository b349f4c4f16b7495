package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/upstream"
)

type upstreamDoer interface {
	Do(ctx context.Context, req upstream.Request) ([]byte, error)
}

// Repository is the commerce API's /cart resource. Every call answers with the
// authoritative item list.
type Repository struct {
	client upstreamDoer
	logg   *logger.Logger
}

func NewRepository(client upstreamDoer, logg *logger.Logger) *Repository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Repository{client: client, logg: logg}
}

type addRequest struct {
	Product          string            `json:"product"`
	Name             string            `json:"name"`
	Price            json.Number       `json:"price"`
	Quantity         int               `json:"quantity"`
	Image            string            `json:"image,omitempty"`
	VariationSKU     string            `json:"variationSku,omitempty"`
	VariationOptions map[string]string `json:"variationOptions,omitempty"`
	VariationDisplay string            `json:"variationDisplay,omitempty"`
}

type quantityRequest struct {
	Quantity     int    `json:"quantity"`
	VariationSKU string `json:"variationSku,omitempty"`
}

// Load fetches GET /cart.
func (r *Repository) Load(ctx context.Context, token string) ([]Item, error) {
	body, err := r.client.Do(ctx, upstream.Request{Method: http.MethodGet, Path: "/cart", Token: token})
	if err != nil {
		return nil, err
	}
	return r.decode(ctx, body)
}

// Add posts one line to POST /cart.
func (r *Repository) Add(ctx context.Context, token string, item Item) ([]Item, error) {
	body, err := r.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/cart",
		Token:  token,
		Body: addRequest{
			Product:          item.ProductID,
			Name:             item.Name,
			Price:            json.Number(item.Price.String()),
			Quantity:         item.Quantity,
			Image:            item.Image,
			VariationSKU:     item.VariationSKU,
			VariationOptions: item.VariationOptions,
			VariationDisplay: item.VariationDisplay,
		},
	})
	if err != nil {
		return nil, err
	}
	return r.itemsOrReload(ctx, token, body)
}

// Remove calls DELETE /cart/:productId, scoped to a variation when the key has one.
func (r *Repository) Remove(ctx context.Context, token string, key Key) ([]Item, error) {
	var query url.Values
	if key.VariationSKU != "" {
		query = url.Values{"variationSku": {key.VariationSKU}}
	}
	body, err := r.client.Do(ctx, upstream.Request{
		Method: http.MethodDelete,
		Path:   "/cart/" + url.PathEscape(key.ProductID),
		Query:  query,
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	return r.itemsOrReload(ctx, token, body)
}

// UpdateQuantity calls PATCH /cart/:productId.
func (r *Repository) UpdateQuantity(ctx context.Context, token string, key Key, quantity int) ([]Item, error) {
	body, err := r.client.Do(ctx, upstream.Request{
		Method: http.MethodPatch,
		Path:   "/cart/" + url.PathEscape(key.ProductID),
		Token:  token,
		Body:   quantityRequest{Quantity: quantity, VariationSKU: key.VariationSKU},
	})
	if err != nil {
		return nil, err
	}
	return r.itemsOrReload(ctx, token, body)
}

// itemsOrReload decodes a mutation response; an empty body is answered with a fresh GET.
func (r *Repository) itemsOrReload(ctx context.Context, token string, body []byte) ([]Item, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return r.Load(ctx, token)
	}
	return r.decode(ctx, body)
}

func (r *Repository) decode(ctx context.Context, body []byte) ([]Item, error) {
	records, err := upstream.DecodeList(body, "products", "items", "cart")
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var item Item
		if err := json.Unmarshal(rec, &item); err != nil {
			dropped++
			continue
		}
		items = append(items, item)
	}
	if dropped > 0 {
		r.logg.Warn(r.logg.WithField(ctx, "dropped", dropped), "cart.malformed_items")
	}
	return items, nil
}
