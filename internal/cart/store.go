package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/metrics"
)

const storeName = "cart"

type remote interface {
	Load(ctx context.Context, token string) ([]Item, error)
	Add(ctx context.Context, token string, item Item) ([]Item, error)
	Remove(ctx context.Context, token string, key Key) ([]Item, error)
	UpdateQuantity(ctx context.Context, token string, key Key, quantity int) ([]Item, error)
}

// Store mirrors one user's server-side cart. Mutations run one at a time in arrival
// order; reads never wait on the network. A successful call replaces the local items
// with the server's answer, a failed one leaves them untouched.
type Store struct {
	userID          string
	remote          remote
	requireVerified bool
	metrics         *metrics.StoreMetrics
	logg            *logger.Logger

	op sync.Mutex

	mu     sync.RWMutex
	items  []Item
	loaded bool
}

// Items returns a copy of the current lines.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Loaded reports whether the store has been synchronised with the server at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Contains reports whether a line with key is present.
func (s *Store) Contains(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.Key() == key {
			return true
		}
	}
	return false
}

// Authorize checks that user may mutate this cart.
func (s *Store) Authorize(user *auth.User) error {
	if err := auth.RequireShopper(user, s.requireVerified); err != nil {
		return err
	}
	if user.ID != s.userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cart belongs to another user")
	}
	return nil
}

// LoadForUser fetches the cart. A nil user clears the store and yields no items.
func (s *Store) LoadForUser(ctx context.Context, user *auth.User) ([]Item, error) {
	if user == nil {
		s.Clear()
		return []Item{}, nil
	}
	return s.mutate(ctx, user, "load", func(token string) ([]Item, error) {
		return s.remote.Load(ctx, token)
	})
}

// Add writes one line. Repeat adds follow whatever the server does with them.
func (s *Store) Add(ctx context.Context, user *auth.User, item Item) ([]Item, error) {
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if item.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, user, "add", func(token string) ([]Item, error) {
		return s.remote.Add(ctx, token, item)
	})
}

// Remove deletes the line with key. Removing an absent line is not an error.
func (s *Store) Remove(ctx context.Context, user *auth.User, key Key) ([]Item, error) {
	if strings.TrimSpace(key.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.mutate(ctx, user, "remove", func(token string) ([]Item, error) {
		return s.remote.Remove(ctx, token, key)
	})
}

// UpdateQuantity sets the quantity of the line with key.
func (s *Store) UpdateQuantity(ctx context.Context, user *auth.User, key Key, quantity int) ([]Item, error) {
	if strings.TrimSpace(key.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, user, "update_quantity", func(token string) ([]Item, error) {
		return s.remote.UpdateQuantity(ctx, token, key, quantity)
	})
}

// Clear forgets every line.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loaded = false
}

func (s *Store) mutate(ctx context.Context, user *auth.User, operation string, call func(token string) ([]Item, error)) ([]Item, error) {
	if err := s.Authorize(user); err != nil {
		return nil, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart request cancelled")
	}

	items, err := call(user.Token)
	if operation != "load" {
		s.metrics.Record(storeName, operation, err)
	}
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"operation": operation,
			"error":     err.Error(),
		}), "cart.mutation_failed")
		return nil, err
	}

	s.mu.Lock()
	s.items = cloneItems(items)
	s.loaded = true
	out := cloneItems(s.items)
	s.mu.Unlock()
	return out, nil
}
