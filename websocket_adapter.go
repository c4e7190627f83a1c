package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

// WSTokenValidator implements go-router's WSTokenValidator interface so
// streaming endpoints (order books, fills, account events) authenticate
// handshakes with the same token service as the REST surface.
type WSTokenValidator struct {
	tokenService TokenService
}

// NewWSTokenValidator creates a WebSocket token validator backed by the
// provided TokenService.
func NewWSTokenValidator(tokenService TokenService) *WSTokenValidator {
	return &WSTokenValidator{
		tokenService: tokenService,
	}
}

// Validate validates a token string and returns WebSocket-compatible
// auth claims. Rejections stay as opaque as on the HTTP path.
func (w *WSTokenValidator) Validate(tokenString string) (router.WSAuthClaims, error) {
	claims, err := w.tokenService.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &WSAuthClaimsAdapter{claims: claims}, nil
}

// WSAuthClaimsAdapter adapts AuthClaims to go-router's WSAuthClaims
// interface, answering resource permission checks from the role
// hierarchy.
type WSAuthClaimsAdapter struct {
	claims AuthClaims
}

func (w *WSAuthClaimsAdapter) Subject() string {
	return w.claims.Subject()
}

func (w *WSAuthClaimsAdapter) UserID() string {
	return w.claims.UserID()
}

func (w *WSAuthClaimsAdapter) Role() string {
	return w.claims.Role()
}

// CanRead answers read checks from the role hierarchy; the resource name
// is not consulted, roles are global.
func (w *WSAuthClaimsAdapter) CanRead(resource string) bool {
	return UserRole(w.claims.Role()).CanRead()
}

func (w *WSAuthClaimsAdapter) CanEdit(resource string) bool {
	return UserRole(w.claims.Role()).CanEdit()
}

func (w *WSAuthClaimsAdapter) CanCreate(resource string) bool {
	return UserRole(w.claims.Role()).CanCreate()
}

func (w *WSAuthClaimsAdapter) CanDelete(resource string) bool {
	return UserRole(w.claims.Role()).CanDelete()
}

func (w *WSAuthClaimsAdapter) HasRole(role string) bool {
	return w.claims.HasRole(role)
}

func (w *WSAuthClaimsAdapter) IsAtLeast(minRole string) bool {
	return w.claims.IsAtLeast(minRole)
}

// NewWSAuthMiddleware creates a configured WebSocket authentication
// middleware using this authenticator's TokenService.
func (s *Auther) NewWSAuthMiddleware(config ...router.WSAuthConfig) router.WebSocketMiddleware {
	validator := NewWSTokenValidator(s.tokenService)

	var cfg router.WSAuthConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	cfg.TokenValidator = validator

	return router.NewWSAuth(cfg)
}

// WSAuthClaimsFromContext retrieves the auth claims stored by the
// WebSocket middleware, unwrapping the adapter when present.
func WSAuthClaimsFromContext(ctx context.Context) (AuthClaims, bool) {
	wsAuthClaims, ok := router.WSAuthClaimsFromContext(ctx)
	if !ok {
		return nil, false
	}

	if adapter, ok := wsAuthClaims.(*WSAuthClaimsAdapter); ok {
		return adapter.claims, true
	}

	return nil, false
}
