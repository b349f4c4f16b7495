package wishlist

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/metrics"
)

// RegistryParams groups dependencies for the wishlist registry.
type RegistryParams struct {
	Repo            Repository
	RequireVerified bool
	Metrics         *metrics.StoreMetrics
	Logger          *logger.Logger
}

type watcher struct {
	cancel context.CancelFunc
}

// Registry hands out one Store per user and owns their push subscriptions.
type Registry struct {
	repo            Repository
	requireVerified bool
	metrics         *metrics.StoreMetrics
	logg            *logger.Logger
	now             func() time.Time

	mu       sync.Mutex
	stores   map[string]*Store
	lastUsed map[string]time.Time
	watchers map[string]*watcher
}

func NewRegistry(params RegistryParams) *Registry {
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Registry{
		repo:            params.Repo,
		requireVerified: params.RequireVerified,
		metrics:         params.Metrics,
		logg:            logg,
		now:             time.Now,
		stores:          make(map[string]*Store),
		lastUsed:        make(map[string]time.Time),
		watchers:        make(map[string]*watcher),
	}
}

// For returns the user's store, creating it on first use.
func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeLocked(userID)
}

func (r *Registry) storeLocked(userID string) *Store {
	r.lastUsed[userID] = r.now()
	if s, ok := r.stores[userID]; ok {
		return s
	}
	s := &Store{
		userID:          userID,
		repo:            r.repo,
		requireVerified: r.requireVerified,
		metrics:         r.metrics,
		logg:            r.logg,
	}
	r.stores[userID] = s
	return s
}

// Watch starts following the user's wishlist in the background unless it already is.
// The subscription ends at Drop, Close, an idle Sweep, or when the caller's token expires.
func (r *Registry) Watch(user *auth.User) {
	if user == nil || user.ID == "" {
		return
	}
	r.mu.Lock()
	if _, running := r.watchers[user.ID]; running {
		r.lastUsed[user.ID] = r.now()
		r.mu.Unlock()
		return
	}
	store := r.storeLocked(user.ID)
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if user.ExpiresAt.IsZero() {
		ctx, cancel = context.WithCancel(context.Background())
	} else {
		ctx, cancel = context.WithDeadline(context.Background(), user.ExpiresAt)
	}
	w := &watcher{cancel: cancel}
	r.watchers[user.ID] = w
	r.mu.Unlock()

	go func() {
		defer cancel()
		ctx := r.logg.WithUserID(ctx, user.ID)
		if err := store.Follow(ctx, user); err != nil {
			r.logg.Error(ctx, "wishlist.follow_stopped", err)
		}
		r.mu.Lock()
		if r.watchers[user.ID] == w {
			delete(r.watchers, user.ID)
		}
		r.mu.Unlock()
	}()
}

// Watching reports whether a subscription is running for userID.
func (r *Registry) Watching(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.watchers[userID]
	return ok
}

// Drop stops the user's subscription, then clears and forgets the store.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	s, ok := r.forgetLocked(userID)
	r.mu.Unlock()
	if ok {
		s.Clear()
	}
}

// Sweep drops every user whose store was not handed out within idle, stopping
// their subscriptions, and reports how many were released.
func (r *Registry) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*Store
	released := 0
	for userID, seen := range r.lastUsed {
		if !seen.Before(cutoff) {
			continue
		}
		if s, ok := r.forgetLocked(userID); ok {
			stale = append(stale, s)
		}
		released++
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Clear()
	}
	return released
}

// forgetLocked must run with r.mu held.
func (r *Registry) forgetLocked(userID string) (*Store, bool) {
	s, ok := r.stores[userID]
	delete(r.stores, userID)
	delete(r.lastUsed, userID)
	if w, running := r.watchers[userID]; running {
		w.cancel()
		delete(r.watchers, userID)
	}
	return s, ok
}

// Len reports how many stores are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Close stops every subscription.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, w := range r.watchers {
		w.cancel()
		delete(r.watchers, id)
	}
}
