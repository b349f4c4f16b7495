package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	pkgAuth "github.com/angelmondragon/kbeauty-storefront/pkg/auth"
	"github.com/angelmondragon/kbeauty-storefront/pkg/auth/session"
	"github.com/angelmondragon/kbeauty-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

// OptionalAuth identifies the caller when a bearer token is present. Anonymous requests pass
// through; a present but invalid token is rejected.
func OptionalAuth(cfg config.AuthConfig, revocations session.RevocationChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, revocations, logg, false)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(cfg config.AuthConfig, revocations session.RevocationChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, revocations, logg, true)
}

func authenticate(cfg config.AuthConfig, revocations session.RevocationChecker, logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				if required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseIdentityToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing token id"))
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if revoked {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session ended"))
					return
				}
			}

			user := claims.User(token)
			ctx := WithUser(r.Context(), user)
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
