package categories

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

// Repository reads categories from the commerce API.
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

// List fetches GET /categories. Malformed records are dropped and logged.
func (r *Repository) List(ctx context.Context) ([]RawCategory, error) {
	body, err := r.client.Get(ctx, "/categories", nil, "")
	if err != nil {
		return nil, err
	}
	records, err := upstream.DecodeList(body, "categories")
	if err != nil {
		return nil, err
	}
	out := make([]RawCategory, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var rc RawCategory
		if err := json.Unmarshal(rec, &rc); err != nil {
			dropped++
			continue
		}
		out = append(out, rc)
	}
	if dropped > 0 {
		r.logg.Warn(r.logg.WithField(ctx, "dropped", dropped), "categories.malformed_records")
	}
	return out, nil
}

// Get fetches GET /categories/:id, used when a product references a category missing from the list.
func (r *Repository) Get(ctx context.Context, id string) (*RawCategory, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	body, err := r.client.Get(ctx, "/categories/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	var rc RawCategory
	if err := upstream.DecodeJSON(upstream.DecodeObject(body, "category"), &rc); err != nil {
		return nil, err
	}
	if rc.ID == "" {
		rc.ID = id
	}
	return &rc, nil
}
