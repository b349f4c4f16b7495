package wishlist

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
)

type memRepo struct {
	mu      sync.Mutex
	sets    map[string][]string
	err     error
	writes  int
	updates chan []string
	active  atomic.Int32
}

func newMemRepo() *memRepo {
	return &memRepo{sets: map[string][]string{}, updates: make(chan []string, 4)}
}

func (m *memRepo) Load(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return slices.Clone(m.sets[userID]), nil
}

func (m *memRepo) Add(_ context.Context, userID, productID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.writes++
	if !slices.Contains(m.sets[userID], productID) {
		m.sets[userID] = append(m.sets[userID], productID)
	}
	return slices.Clone(m.sets[userID]), nil
}

func (m *memRepo) Remove(_ context.Context, userID, productID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.writes++
	m.sets[userID] = slices.DeleteFunc(m.sets[userID], func(id string) bool { return id == productID })
	return slices.Clone(m.sets[userID]), nil
}

func (m *memRepo) Watch(ctx context.Context, _ string, onChange func([]string)) error {
	m.active.Add(1)
	defer m.active.Add(-1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case items := <-m.updates:
			onChange(items)
		}
	}
}

func (m *memRepo) stored(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sets[userID])
}

func shopper() *auth.User {
	return &auth.User{ID: "u1", EmailVerified: true}
}

func newRegistry(repo Repository) *Registry {
	return NewRegistry(RegistryParams{Repo: repo, RequireVerified: true})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestToggleTwiceRestoresMembership(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.sets["u1"] = []string{"p1", "p2"}
	store := newRegistry(repo).For("u1")
	ctx := context.Background()

	items, added, err := store.Toggle(ctx, shopper(), "p1")
	if err != nil || added {
		t.Fatalf("first toggle: added=%v err=%v", added, err)
	}
	if !slices.Equal(items, []string{"p2"}) || store.IsInWishlist("p1") {
		t.Fatalf("p1 should be removed, got %v", items)
	}

	items, added, err = store.Toggle(ctx, shopper(), "p1")
	if err != nil || !added {
		t.Fatalf("second toggle: added=%v err=%v", added, err)
	}
	if !slices.Equal(items, []string{"p2", "p1"}) || !store.IsInWishlist("p1") {
		t.Fatalf("p1 should be back, got %v", items)
	}
}

func TestToggleLoadsBeforeReadingMembership(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.sets["u1"] = []string{"p1"}
	store := newRegistry(repo).For("u1")

	_, added, err := store.Toggle(context.Background(), shopper(), "p1")
	if err != nil || added {
		t.Fatalf("expected removal, added=%v err=%v", added, err)
	}
	if len(repo.stored("u1")) != 0 {
		t.Fatalf("expected empty persisted set, got %v", repo.stored("u1"))
	}
}

func TestToggleSeesChangesFromAnotherInstance(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	first := newRegistry(repo).For("u1")
	second := newRegistry(repo).For("u1")
	ctx := context.Background()

	if _, added, err := first.Toggle(ctx, shopper(), "p1"); err != nil || !added {
		t.Fatalf("first instance add: added=%v err=%v", added, err)
	}
	if _, added, err := second.Toggle(ctx, shopper(), "p1"); err != nil || added {
		t.Fatalf("second instance remove: added=%v err=%v", added, err)
	}

	items, added, err := first.Toggle(ctx, shopper(), "p1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !added || !slices.Equal(items, []string{"p1"}) {
		t.Fatalf("expected p1 re-added after external removal, added=%v items=%v", added, items)
	}
	if !slices.Equal(repo.stored("u1"), []string{"p1"}) {
		t.Fatalf("persisted set out of sync: %v", repo.stored("u1"))
	}
}

func TestAddIsIdempotentAndRemoveAbsentIsHarmless(t *testing.T) {
	t.Parallel()
	store := newRegistry(newMemRepo()).For("u1")
	ctx := context.Background()

	if _, err := store.Add(ctx, shopper(), "p1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := store.Add(ctx, shopper(), "p1")
	if err != nil || !slices.Equal(items, []string{"p1"}) {
		t.Fatalf("repeat add: %v %v", items, err)
	}

	items, err = store.Remove(ctx, shopper(), "nope")
	if err != nil || !slices.Equal(items, []string{"p1"}) {
		t.Fatalf("remove absent: %v %v", items, err)
	}
}

func TestFailedWriteKeepsLocalSet(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	store := newRegistry(repo).For("u1")
	ctx := context.Background()

	if _, err := store.Add(ctx, shopper(), "p1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	repo.mu.Lock()
	repo.err = pkgerrors.New(pkgerrors.CodeDependency, "firestore unavailable")
	repo.mu.Unlock()
	if _, _, err := store.Toggle(ctx, shopper(), "p1"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !slices.Equal(store.Items(), []string{"p1"}) {
		t.Fatalf("local set changed after failure: %v", store.Items())
	}
}

func TestWishlistRejectsAnonymousAndUnverified(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	store := newRegistry(repo).For("u1")
	ctx := context.Background()

	if _, _, err := store.Toggle(ctx, nil, "p1"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := store.Add(ctx, &auth.User{ID: "u1"}, "p1"); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := store.Add(ctx, shopper(), "  "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("rejected callers reached the repository %d times", repo.writes)
	}
}

func TestLoadForNilUserClears(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.sets["u1"] = []string{"p1"}
	store := newRegistry(repo).For("u1")

	if _, err := store.LoadForUser(context.Background(), shopper()); err != nil || !store.Loaded() {
		t.Fatalf("load: loaded=%v err=%v", store.Loaded(), err)
	}

	items, err := store.LoadForUser(context.Background(), nil)
	if err != nil || len(items) != 0 || store.Loaded() {
		t.Fatalf("nil user should clear: items=%v loaded=%v err=%v", items, store.Loaded(), err)
	}
}

func TestWatchAppliesPushedUpdatesUntilDropped(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	reg := newRegistry(repo)
	store := reg.For("u1")

	reg.Watch(shopper())
	if !reg.Watching("u1") {
		t.Fatal("expected a running subscription")
	}
	reg.Watch(shopper())

	repo.updates <- []string{"p9", "p9", " ", "p3"}
	waitFor(t, "pushed update", func() bool {
		return slices.Equal(store.Items(), []string{"p9", "p3"})
	})

	reg.Drop("u1")
	if reg.Watching("u1") || len(store.Items()) != 0 {
		t.Fatalf("drop should stop the subscription and clear the store")
	}
	waitFor(t, "listener exit", func() bool { return repo.active.Load() == 0 })
}

func TestSweepReleasesIdleUsersAndListeners(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	reg := newRegistry(repo)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var clock sync.Mutex
	reg.now = func() time.Time {
		clock.Lock()
		defer clock.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		clock.Lock()
		now = now.Add(d)
		clock.Unlock()
	}

	const idleUsers = 200
	for i := 0; i < idleUsers; i++ {
		user := &auth.User{ID: fmt.Sprintf("idle-%d", i), EmailVerified: true}
		if _, err := reg.For(user.ID).LoadForUser(context.Background(), user); err != nil {
			t.Fatalf("load: %v", err)
		}
		reg.Watch(user)
	}
	waitFor(t, "listeners to start", func() bool { return repo.active.Load() == idleUsers })

	advance(20 * time.Minute)
	reg.Watch(shopper())
	waitFor(t, "active listener", func() bool { return repo.active.Load() == idleUsers+1 })

	advance(15 * time.Minute)
	if released := reg.Sweep(30 * time.Minute); released != idleUsers {
		t.Fatalf("expected %d users released, got %d", idleUsers, released)
	}
	if reg.Len() != 1 || !reg.Watching("u1") || reg.Watching("idle-0") {
		t.Fatalf("only the active user should remain: len=%d", reg.Len())
	}
	waitFor(t, "idle listeners to exit", func() bool { return repo.active.Load() == 1 })
}

func TestWatchEndsWhenTokenExpires(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	reg := newRegistry(repo)
	user := shopper()
	user.ExpiresAt = time.Now().Add(50 * time.Millisecond)

	reg.Watch(user)
	waitFor(t, "subscription to end at token expiry", func() bool {
		return !reg.Watching("u1") && repo.active.Load() == 0
	})

	user.ExpiresAt = time.Now().Add(time.Hour)
	reg.Watch(user)
	if !reg.Watching("u1") {
		t.Fatal("a fresh token should start a new subscription")
	}
	reg.Close()
}

func TestNormalizeIDs(t *testing.T) {
	t.Parallel()
	if got := normalizeIDs([]string{" a", "", "b", "a"}); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("unexpected ids %v", got)
	}
	if got := normalizeIDs(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
