package auth

import (
	"context"

	"github.com/tradekit/go-auth/middleware/authware"
)

// ContextEnricherAdapter propagates verified claims and the resolved
// identity from the middleware into the standard context, so code below
// the transport can use GetClaims and IdentityFromContext directly.
func ContextEnricherAdapter(c context.Context, claims authware.AuthClaims, identity authware.Identity) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		c = WithClaimsContext(c, authClaims)
	}

	if identity == nil {
		return c
	}

	if authIdentity, ok := identity.(Identity); ok {
		c = WithIdentityContext(c, authIdentity)
	}

	return c
}

// RoleChecker adapts the role hierarchy to the middleware permission hook.
// The required permission is interpreted as a minimum role.
func RoleChecker() authware.PermissionChecker {
	return func(claims authware.AuthClaims, required string) bool {
		if claims == nil {
			return false
		}
		return claims.IsAtLeast(required)
	}
}
