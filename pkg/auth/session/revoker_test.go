package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) RevokedTokenKey(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}

func TestRevokeAndCheck(t *testing.T) {
	store := newMockStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revoker := &Revoker{store: store, keyer: store, now: func() time.Time { return now }}
	ctx := context.Background()

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh token should not be revoked, revoked=%v err=%v", revoked, err)
	}

	if err := revoker.Revoke(ctx, "jti-1", now.Add(20*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, revoked=%v err=%v", revoked, err)
	}
	if got := store.ttls["revoked:jti-1"]; got != 20*time.Minute {
		t.Fatalf("expected ttl to match remaining lifetime, got %v", got)
	}
}

func TestRevokeUsesMinimumTTL(t *testing.T) {
	store := newMockStore()
	now := time.Now()
	revoker := &Revoker{store: store, keyer: store, now: func() time.Time { return now }}

	if err := revoker.Revoke(context.Background(), "jti-2", now.Add(-time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if got := store.ttls["revoked:jti-2"]; got != minRevocationTTL {
		t.Fatalf("expected minimum ttl, got %v", got)
	}
}

func TestRevokeRequiresTokenID(t *testing.T) {
	store := newMockStore()
	revoker := &Revoker{store: store, keyer: store, now: time.Now}
	if err := revoker.Revoke(context.Background(), " ", time.Now()); err == nil {
		t.Fatalf("expected error for empty token id")
	}
	if _, err := revoker.IsRevoked(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty token id")
	}
}
