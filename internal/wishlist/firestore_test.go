package wishlist

import (
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	pkgfirestore "github.com/angelmondragon/kbeauty-storefront/pkg/firestore"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"github.com/google/uuid"
)

// Runs against the Firestore emulator when FIRESTORE_EMULATOR_HOST is set.
func newEmulatorRepo(t *testing.T) *FirestoreRepository {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := pkgfirestore.NewClient(ctx, config.FirestoreConfig{
		ProjectID:          "storefront-test",
		WishlistCollection: "wishlists_test",
	}, logger.Nop())
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	repo, err := NewFirestoreRepository(client, logger.Nop())
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

func TestFirestoreRepositoryRoundTrip(t *testing.T) {
	repo := newEmulatorRepo(t)
	ctx := context.Background()
	userID := uuid.NewString()

	items, err := repo.Load(ctx, userID)
	if err != nil || len(items) != 0 {
		t.Fatalf("load missing doc: items=%v err=%v", items, err)
	}

	for i := 0; i < 2; i++ {
		items, err = repo.Add(ctx, userID, "p1")
		if err != nil || !slices.Equal(items, []string{"p1"}) {
			t.Fatalf("add #%d: items=%v err=%v", i+1, items, err)
		}
	}

	items, err = repo.Remove(ctx, userID, "p1")
	if err != nil || len(items) != 0 {
		t.Fatalf("remove: items=%v err=%v", items, err)
	}
}

func TestFirestoreRepositoryWatch(t *testing.T) {
	repo := newEmulatorRepo(t)
	userID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := make(chan []string, 8)
	done := make(chan error, 1)
	go func() { done <- repo.Watch(ctx, userID, func(items []string) { seen <- items }) }()

	if first := <-seen; len(first) != 0 {
		t.Fatalf("expected empty initial snapshot, got %v", first)
	}
	if _, err := repo.Add(context.Background(), userID, "p7"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := <-seen; !slices.Equal(got, []string{"p7"}) {
		t.Fatalf("unexpected pushed snapshot %v", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}

func TestNewFirestoreRepositoryRequiresClient(t *testing.T) {
	if _, err := NewFirestoreRepository(nil, nil); err == nil {
		t.Fatal("expected an error without a client")
	}
}
