package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/tradekit/go-auth/middleware/authware"
)

// LoginPayload is the credential pair the transport hands to Login.
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// HTTPAuthenticator is the transport facing surface the controller drives.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginPayload) (*LoginResult, error)
	Register(ctx router.Context, msg RegisterUserMessage) (Identity, error)
	ProtectedRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc
}

// RouteAuthenticator binds an Authenticator to go-router requests.
type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	Logger           Logger
	AuthErrorHandler router.ErrorHandler
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

// Login verifies the payload credentials and returns the issued token
// bundle. Credential failures come back as is so the transport layer can
// translate them without learning why the pair was rejected.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (*LoginResult, error) {
	result, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return nil, err
	}

	return result, nil
}

// Register creates the account and returns its identity.
func (a *RouteAuthenticator) Register(ctx router.Context, msg RegisterUserMessage) (Identity, error) {
	identity, err := a.auth.Register(ctx.Context(), msg)
	if err != nil {
		a.Logger.Error("Register error: %s", err)
		return nil, err
	}

	return identity, nil
}

// ProtectedRoute enforces bearer authentication before the wrapped handler
// runs. Verified claims and the freshly resolved identity land in the
// request locals under the configured context keys.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.AuthErrorHandler
	}

	return authware.New(authware.Config{
		ErrorHandler: errorHandler,
		TokenValidator: &wareValidator{
			validator: NewTokenService(
				[]byte(a.cfg.GetSigningKey()),
				a.cfg.GetTokenTTL(),
				a.cfg.GetIssuer(),
				a.cfg.GetAudience(),
				a.Logger,
			),
		},
		IdentityResolver: a.resolveWareIdentity,
		ContextKey:       a.cfg.GetContextKey(),
		TokenLookup:      a.cfg.GetTokenLookup(),
		AuthScheme:       a.cfg.GetAuthScheme(),
		ContextEnricher:  ContextEnricherAdapter,
	})
}

// MakeClientRouteAuthErrorHandler builds the failure handler for protected
// routes. With optional set, a bad or absent credential lets the request
// through unauthenticated instead of rejecting it.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) router.ErrorHandler {
	return func(ctx router.Context, err error) error {
		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", err)
			return ctx.Next()
		}

		return a.AuthErrorHandler(ctx, err)
	}
}

func (a *RouteAuthenticator) resolveWareIdentity(ctx context.Context, claims authware.AuthClaims) (authware.Identity, error) {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return nil, ErrTokenRejected
	}

	identity, err := a.auth.ResolveIdentity(ctx, authClaims)
	if err != nil {
		return nil, err
	}

	return identity, nil
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, ErrTokenRejected.Message).
			WithCode(goerrors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication rejected",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.JSON(router.StatusUnauthorized, map[string]any{
		"success": false,
		"message": richErr.Message,
	})
}

// wareValidator lifts the package token validator into the middleware's
// claim surface.
type wareValidator struct {
	validator TokenValidator
}

func (w *wareValidator) Validate(tokenString string) (authware.AuthClaims, error) {
	claims, err := w.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)
