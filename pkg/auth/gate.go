package auth

import pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"

// RequireShopper rejects callers that may not touch a cart or wishlist.
func RequireShopper(user *User, requireVerified bool) error {
	if user == nil || user.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to continue")
	}
	if requireVerified && !user.EmailVerified {
		return pkgerrors.New(pkgerrors.CodeForbidden, "verify your email address to continue")
	}
	return nil
}

// CanSeePrices reports whether prices may be shown to the caller.
func CanSeePrices(user *User) bool {
	return user != nil && user.ID != "" && user.EmailVerified
}
