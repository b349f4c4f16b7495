package wishlist

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	pkgfirestore "github.com/angelmondragon/kbeauty-storefront/pkg/firestore"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// document is the stored shape of wishlists/{userId}.
type document struct {
	Items     []string  `firestore:"items"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty"`
}

// FirestoreRepository stores each wishlist as one document keyed by user id.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
	logg       *logger.Logger
}

func NewFirestoreRepository(client *pkgfirestore.Client, logg *logger.Logger) (*FirestoreRepository, error) {
	if client == nil || client.Raw() == nil {
		return nil, errors.New("firestore client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &FirestoreRepository{client: client.Raw(), collection: client.Collection(), logg: logg}, nil
}

func (r *FirestoreRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(userID)
}

// Load reads the set. A missing document is an empty wishlist.
func (r *FirestoreRepository) Load(ctx context.Context, userID string) ([]string, error) {
	snap, err := r.doc(userID).Get(ctx)
	if err != nil {
		if pkgfirestore.IsNotFound(err) {
			return []string{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return itemsFrom(snap)
}

func (r *FirestoreRepository) Add(ctx context.Context, userID, productID string) ([]string, error) {
	return r.update(ctx, userID, func(items []string) []string {
		if slices.Contains(items, productID) {
			return items
		}
		return append(items, productID)
	})
}

func (r *FirestoreRepository) Remove(ctx context.Context, userID, productID string) ([]string, error) {
	return r.update(ctx, userID, func(items []string) []string {
		return slices.DeleteFunc(items, func(id string) bool { return id == productID })
	})
}

// update runs a read-modify-write in a transaction so concurrent writers from other
// devices are not lost.
func (r *FirestoreRepository) update(ctx context.Context, userID string, change func([]string) []string) ([]string, error) {
	ref := r.doc(userID)
	var result []string
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current := []string{}
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if current, err = itemsFrom(snap); err != nil {
				return err
			}
		case !pkgfirestore.IsNotFound(err):
			return err
		}
		result = normalizeIDs(change(current))
		return tx.Set(ref, map[string]any{
			"items":     result,
			"updatedAt": firestore.ServerTimestamp,
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wishlist")
	}
	return result, nil
}

// Watch streams document snapshots. A deleted or missing document reads as empty.
func (r *FirestoreRepository) Watch(ctx context.Context, userID string, onChange func([]string)) error {
	it := r.doc(userID).Snapshots(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "watch wishlist")
		}
		if !snap.Exists() {
			onChange([]string{})
			continue
		}
		items, err := itemsFrom(snap)
		if err != nil {
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"user_id": userID, "error": err.Error()}), "wishlist.snapshot_decode_failed")
			continue
		}
		onChange(items)
	}
}

func itemsFrom(snap *firestore.DocumentSnapshot) ([]string, error) {
	if snap == nil || !snap.Exists() {
		return []string{}, nil
	}
	var doc document
	if err := snap.DataTo(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected wishlist document shape")
	}
	items := make([]string, 0, len(doc.Items))
	for _, id := range doc.Items {
		if id = strings.TrimSpace(id); id != "" {
			items = append(items, id)
		}
	}
	return normalizeIDs(items), nil
}
