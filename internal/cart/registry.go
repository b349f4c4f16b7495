package cart

import (
	"sync"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/angelmondragon/kbeauty-storefront/pkg/metrics"
)

// Registry hands out one Store per user so every handler sees the same cart.
type Registry struct {
	remote          remote
	requireVerified bool
	metrics         *metrics.StoreMetrics
	logg            *logger.Logger
	now             func() time.Time

	mu       sync.Mutex
	stores   map[string]*Store
	lastUsed map[string]time.Time
}

func NewRegistry(r remote, requireVerified bool, m *metrics.StoreMetrics, logg *logger.Logger) *Registry {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Registry{
		remote:          r,
		requireVerified: requireVerified,
		metrics:         m,
		logg:            logg,
		now:             time.Now,
		stores:          make(map[string]*Store),
		lastUsed:        make(map[string]time.Time),
	}
}

// For returns the user's store, creating it on first use.
func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastUsed[userID] = r.now()
	if s, ok := r.stores[userID]; ok {
		return s
	}
	s := &Store{
		userID:          userID,
		remote:          r.remote,
		requireVerified: r.requireVerified,
		metrics:         r.metrics,
		logg:            r.logg,
	}
	r.stores[userID] = s
	return s
}

// Drop clears and forgets the user's store.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	s, ok := r.stores[userID]
	delete(r.stores, userID)
	delete(r.lastUsed, userID)
	r.mu.Unlock()
	if ok {
		s.Clear()
	}
}

// Sweep forgets every store not handed out within idle and reports how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*Store
	for userID, seen := range r.lastUsed {
		if !seen.Before(cutoff) {
			continue
		}
		if s, ok := r.stores[userID]; ok {
			stale = append(stale, s)
		}
		delete(r.stores, userID)
		delete(r.lastUsed, userID)
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Clear()
	}
	return len(stale)
}

// Len reports how many stores are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
