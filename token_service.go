package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenTTL is how long issued tokens stay valid unless the
// service is configured otherwise.
const DefaultTokenTTL = 30 * time.Minute

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	tokenTTL   time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	clock      func() time.Time
	logger     Logger
	decorator  ClaimsDecorator
}

// NewTokenService creates a new TokenService instance. The signing key
// is the single shared secret every token is bound to; it is captured
// here and never exposed again.
func NewTokenService(signingKey []byte, tokenTTL time.Duration, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		issuer:     issuer,
		audience:   audience,
		clock:      time.Now,
		logger:     logger,
		decorator:  noopClaimsDecorator{},
	}
}

// WithClaimsDecorator registers a decorator invoked before signing.
// Decorators may only touch extension fields; mutating identity or
// registered claims aborts issuance.
func (ts *TokenServiceImpl) WithClaimsDecorator(d ClaimsDecorator) *TokenServiceImpl {
	ts.decorator = normalizeClaimsDecorator(d)
	return ts
}

// WithClock overrides the time source, used for deterministic expiry tests.
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.clock = clock
	}
	return ts
}

// TTL returns the configured token lifetime.
func (ts *TokenServiceImpl) TTL() time.Duration {
	return ts.tokenTTL
}

// Generate creates a signed token for an identity, injecting the subject
// and expiration claims. Extra entries land in the metadata extension.
func (ts *TokenServiceImpl) Generate(identity Identity, extra map[string]any) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity must not be nil", goerrors.CategoryBadInput)
	}

	now := ts.clock()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.tokenTTL)),
		},
		UID:      identity.ID(),
		UserName: identity.Username(),
		UserRole: identity.Role(),
	}

	if len(extra) > 0 {
		claims.Metadata = make(map[string]any, len(extra))
		for k, v := range extra {
			claims.Metadata[k] = v
		}
	}

	ensureTokenID(&claims.RegisteredClaims)

	snapshot := captureImmutableClaims(claims)
	if err := ts.decorator.Decorate(context.Background(), identity, claims); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "claims decoration failed")
	}

	if err := snapshot.validate(claims); err != nil {
		ts.logger.Error("TokenService generate rejected decorated claims", "error", err)
		return "", err
	}

	return ts.SignClaims(claims)
}

// SignClaims signs a claim set using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string. The signature check runs
// before any claim is trusted, then expiry, then the minimal schema.
// Every failure collapses into the same opaque rejection; the concrete
// cause is only logged.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.clock),
		jwt.WithExpirationRequired(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrTokenRejected
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		ts.logger.Debug("TokenService validate rejected token", "cause", err)
		return nil, ErrTokenRejected
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrTokenRejected
	}

	if err := claims.requireMinimalSchema(); err != nil {
		ts.logger.Debug("TokenService validate rejected claim schema")
		return nil, err
	}

	return claims, nil
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = newTokenID()
	}
}
