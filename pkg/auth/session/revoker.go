package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/angelmondragon/kbeauty-storefront/pkg/redis"
)

// minRevocationTTL keeps a revocation marker alive briefly even for tokens at the edge of expiry.
const minRevocationTTL = time.Minute

type revocationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type revocationKeyer interface {
	RevokedTokenKey(tokenID string) string
}

// Revoker tracks logged-out identity tokens until they would have expired anyway.
type Revoker struct {
	store revocationStore
	keyer revocationKeyer
	now   func() time.Time
}

// RevocationChecker exposes the read-only surface needed by middleware.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewRevoker constructs a revoker backed by Redis.
func NewRevoker(client *redisclient.Client) (*Revoker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Revoker{store: client, keyer: client, now: time.Now}, nil
}

// Revoke marks tokenID as logged out until expiresAt.
func (r *Revoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	ttl := expiresAt.Sub(r.now())
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}
	return r.store.Set(ctx, r.keyer.RevokedTokenKey(tokenID), "1", ttl)
}

// IsRevoked reports whether tokenID has been logged out.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return false, fmt.Errorf("token id is required")
	}
	return r.store.Exists(ctx, r.keyer.RevokedTokenKey(tokenID))
}
