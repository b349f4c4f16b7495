package wishlist

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/metrics"
)

const storeName = "wishlist"

// Repository persists one product id set per user. Mutations return the
// authoritative set after the write.
type Repository interface {
	Load(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string) ([]string, error)
	Remove(ctx context.Context, userID, productID string) ([]string, error)
	// Watch calls onChange with every new version of the set until ctx ends.
	Watch(ctx context.Context, userID string, onChange func([]string)) error
}

// Store mirrors one user's wishlist. Mutations are serialised; a failed one leaves
// the local set untouched.
type Store struct {
	userID          string
	repo            Repository
	requireVerified bool
	metrics         *metrics.StoreMetrics
	logg            *logger.Logger

	op sync.Mutex

	mu     sync.RWMutex
	items  []string
	loaded bool
}

// Items returns a copy of the product ids.
func (s *Store) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneIDs(s.items)
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// IsInWishlist reports local membership.
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.items, strings.TrimSpace(productID))
}

func (s *Store) authorize(user *auth.User) error {
	if err := auth.RequireShopper(user, s.requireVerified); err != nil {
		return err
	}
	if user.ID != s.userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "wishlist belongs to another user")
	}
	return nil
}

// LoadForUser fetches the set. A nil user clears the store.
func (s *Store) LoadForUser(ctx context.Context, user *auth.User) ([]string, error) {
	if user == nil {
		s.Clear()
		return []string{}, nil
	}
	if err := s.authorize(user); err != nil {
		return nil, err
	}
	s.op.Lock()
	defer s.op.Unlock()
	return s.apply(ctx, "load", func() ([]string, error) {
		return s.repo.Load(ctx, s.userID)
	})
}

func (s *Store) Add(ctx context.Context, user *auth.User, productID string) ([]string, error) {
	productID, err := s.prepare(user, productID)
	if err != nil {
		return nil, err
	}
	s.op.Lock()
	defer s.op.Unlock()
	return s.add(ctx, productID)
}

func (s *Store) Remove(ctx context.Context, user *auth.User, productID string) ([]string, error) {
	productID, err := s.prepare(user, productID)
	if err != nil {
		return nil, err
	}
	s.op.Lock()
	defer s.op.Unlock()
	return s.remove(ctx, productID)
}

// Toggle removes productID when it is present and adds it otherwise. Membership is
// decided on a fresh read of the persisted set, taken under the same lock as the write,
// so changes made by other sessions are never toggled against.
func (s *Store) Toggle(ctx context.Context, user *auth.User, productID string) ([]string, bool, error) {
	productID, err := s.prepare(user, productID)
	if err != nil {
		return nil, false, err
	}
	s.op.Lock()
	defer s.op.Unlock()

	if _, err := s.apply(ctx, "load", func() ([]string, error) {
		return s.repo.Load(ctx, s.userID)
	}); err != nil {
		return nil, false, err
	}
	if s.IsInWishlist(productID) {
		items, err := s.remove(ctx, productID)
		return items, false, err
	}
	items, err := s.add(ctx, productID)
	return items, err == nil, err
}

// Follow applies pushed updates until ctx ends.
func (s *Store) Follow(ctx context.Context, user *auth.User) error {
	if err := s.authorize(user); err != nil {
		return err
	}
	return s.repo.Watch(ctx, s.userID, func(items []string) {
		s.replace(items)
	})
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loaded = false
}

func (s *Store) prepare(user *auth.User, productID string) (string, error) {
	if err := s.authorize(user); err != nil {
		return "", err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return productID, nil
}

func (s *Store) add(ctx context.Context, productID string) ([]string, error) {
	return s.apply(ctx, "add", func() ([]string, error) {
		return s.repo.Add(ctx, s.userID, productID)
	})
}

func (s *Store) remove(ctx context.Context, productID string) ([]string, error) {
	return s.apply(ctx, "remove", func() ([]string, error) {
		return s.repo.Remove(ctx, s.userID, productID)
	})
}

// apply must run with s.op held.
func (s *Store) apply(ctx context.Context, operation string, call func() ([]string, error)) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "wishlist request cancelled")
	}
	items, err := call()
	if operation != "load" {
		s.metrics.Record(storeName, operation, err)
	}
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"operation": operation,
			"error":     err.Error(),
		}), "wishlist.mutation_failed")
		return nil, err
	}
	return s.replace(items), nil
}

func (s *Store) replace(items []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = normalizeIDs(items)
	s.loaded = true
	return cloneIDs(s.items)
}

// normalizeIDs trims, drops empties and duplicates, and keeps first-seen order.
func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}
