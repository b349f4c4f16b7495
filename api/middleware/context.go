package middleware

import (
	"context"

	"github.com/angelmondragon/kbeauty-storefront/pkg/auth"
)

type contextKey string

const ctxUser contextKey = "user"

// UserFromContext returns the authenticated caller, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *auth.User {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxUser).(*auth.User); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}

// WithUser injects the caller into the context.
func WithUser(ctx context.Context, user *auth.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUser, user)
}
