// Package authware enforces bearer-token authentication on go-router
// requests. Each request walks the same ladder: extract the credential,
// validate the token, resolve the subject to a live identity, attach the
// identity to the request scope. Failing any rung rejects the request
// before the handler runs.
package authware

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var defaultTokenLookup = "header:" + router.HeaderAuthorization

// ErrCredentialMissing rejects protected requests that carry no bearer
// credential at all. Distinct from token rejection: nothing was presented.
var ErrCredentialMissing = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("CREDENTIAL_MISSING")

// TokenValidator validates tokens and extracts claims without tying the
// middleware to a specific signing implementation. This mirrors the
// TokenService.Validate method from the auth package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the claim surface the middleware needs, mirroring the
// auth package interface to avoid import cycles.
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

// Identity is the resolved-identity surface attached to request scope.
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// IdentityResolver turns verified claims into a live identity. Returning
// an error rejects the request: a valid token for a deleted account is
// worthless.
type IdentityResolver func(ctx context.Context, claims AuthClaims) (Identity, error)

// PermissionChecker is the reserved authorization hook, invoked after
// identity resolution with the configured requirement.
type PermissionChecker func(claims AuthClaims, required string) bool

type Config struct {
	// Filter skips enforcement when it returns true, for public routes
	// mounted under a protected group.
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler

	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// IdentityResolver is optional; when set, every request performs a
	// fresh subject lookup so revoked accounts fail immediately.
	IdentityResolver IdentityResolver

	ContextKey         string
	IdentityContextKey string
	TokenLookup        string
	AuthScheme         string

	// RequiredPermission is handed to PermissionChecker when both are set.
	RequiredPermission string
	PermissionChecker  PermissionChecker

	// ContextEnricher propagates claims and identity into the standard
	// Go context after successful enforcement.
	ContextEnricher func(c context.Context, claims AuthClaims, identity Identity) context.Context
}

// New builds the enforcement middleware from the given configuration.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			var identity Identity
			if cfg.IdentityResolver != nil {
				identity, err = cfg.IdentityResolver(ctx.Context(), claims)
				if err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
			}

			if err := checkPermissions(claims, cfg); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)
			if identity != nil {
				ctx.Locals(cfg.IdentityContextKey, identity)
			}

			if cfg.ContextEnricher != nil {
				stdCtx := cfg.ContextEnricher(ctx.Context(), claims, identity)
				ctx.SetContext(stdCtx)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func checkPermissions(claims AuthClaims, cfg Config) error {
	if cfg.RequiredPermission == "" || cfg.PermissionChecker == nil {
		return nil
	}

	if !cfg.PermissionChecker(claims, cfg.RequiredPermission) {
		return goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden).
			WithMetadata(map[string]any{
				"required": cfg.RequiredPermission,
				"role":     claims.Role(),
			})
	}

	return nil
}

// ExtractRawTokenFromContext walks the configured extractors until one
// yields a credential.
func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) && richErr.TextCode == ErrCredentialMissing.TextCode {
				return c.Status(router.StatusUnauthorized).SendString(ErrCredentialMissing.Message)
			}
			return c.Status(router.StatusUnauthorized).SendString("invalid or expired token")
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: enforcement middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.IdentityContextKey == "" {
		cfg.IdentityContextKey = "identity"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

// GetExtractors parses a lookup string like
// "header:Authorization,cookie:jwt,query:auth_token" into extractors.
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c router.Context) (string, error)

// tokenFromHeader returns a function that extracts the bearer credential
// from the request header.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			return "", ErrCredentialMissing
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrCredentialMissing
	}
}

// tokenFromQuery returns a function that extracts the token from the query string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrCredentialMissing
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts the token from a url param.
func tokenFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrCredentialMissing
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from the named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrCredentialMissing
		}
		return token, nil
	}
}
