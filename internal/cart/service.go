package cart

import (
	"context"
	"fmt"
	"strings"

	product "github.com/angelmondragon/kbeauty-storefront/internal/products"
	"github.com/angelmondragon/kbeauty-storefront/internal/variations"
	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
)

type productLoader interface {
	LoadProduct(ctx context.Context, id string) (*product.Product, error)
}

// Service adds catalog products to a user's cart.
type Service interface {
	AddProduct(ctx context.Context, user *auth.User, productID string, selection variations.Selection, quantity int) ([]Item, error)
}

type service struct {
	registry *Registry
	products productLoader
}

func NewService(registry *Registry, products productLoader) (Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("cart registry required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{registry: registry, products: products}, nil
}

// AddProduct resolves the selection against the live product, checks quantity against
// stock and minimum order, then writes the line. Nothing is sent upstream when the
// caller is not allowed to shop or the quantity is rejected.
func (s *service) AddProduct(ctx context.Context, user *auth.User, productID string, selection variations.Selection, quantity int) ([]Item, error) {
	if err := auth.RequireShopper(user, s.registry.requireVerified); err != nil {
		return nil, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	p, err := s.products.LoadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	line, err := variations.BuildCartItem(*p, selection, quantity)
	if err != nil {
		return nil, err
	}
	return s.registry.For(user.ID).Add(ctx, user, ItemFromLine(line))
}
