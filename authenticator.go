package auth

import (
	"context"
	"reflect"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AccountRegistrerer is the interface we need to handle new user registrations
type AccountRegistrerer interface {
	RegisterUser(ctx context.Context, msg RegisterUserMessage) (*User, error)
}

// Auther resolves verified credentials and claim sets into identities,
// and issues tokens bound to them.
type Auther struct {
	provider     IdentityProvider
	registrar    AccountRegistrerer
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token codec, e.g. to inject a clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithClaimsDecorator forwards a decorator to the underlying token
// service when it supports decoration.
func (s *Auther) WithClaimsDecorator(d ClaimsDecorator) *Auther {
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		ts.WithClaimsDecorator(d)
	}
	return s
}

// WithRegistrar configures the handler that persists new accounts.
func (s *Auther) WithRegistrar(registrar AccountRegistrerer) *Auther {
	s.registrar = registrar
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credential pair and issues a bearer token for the
// resolved identity.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return nil, ErrIdentityNotFound
	}

	// custom providers may not gate on lifecycle state, so check again here
	if sa, ok := identity.(statusAwareIdentity); ok {
		if statusErr := statusAuthError(sa.Status()); statusErr != nil {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
				"identifier": identifier,
				"error":      statusErr.Error(),
			})
			return nil, statusErr
		}
	}

	token, _, err := s.IssueToken(identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int64(s.tokenService.TTL() / time.Second),
		Identity:  identity,
	}, nil
}

// Register persists a new account through the configured registrar and
// returns its identity. Duplicate usernames or emails surface as a
// conflict, not an internal failure.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (Identity, error) {
	if s.registrar == nil {
		return nil, goerrors.New("authenticator has no registrar configured", goerrors.CategoryInternal)
	}

	user, err := s.registrar.RegisterUser(ctx, msg)
	if err != nil {
		s.logger.Error("Register error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventRegisterFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"username": msg.Username,
			"error":    err.Error(),
		})
		return nil, err
	}

	identity := identityFromUser(user)
	s.emitAuthEvent(ctx, ActivityEventRegisterSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"username": identity.Username(),
	})

	return identity, nil
}

// IssueToken builds a claim set bound to the identity and signs it.
// The returned expiry is read back from the token's exp claim so both
// always agree, including when the service runs on an injected clock.
func (s *Auther) IssueToken(identity Identity) (string, time.Time, error) {
	token, err := s.tokenService.Generate(identity, nil)
	if err != nil {
		s.logger.Error("IssueToken sign error", "error", err)
		return "", time.Time{}, err
	}

	claims, err := s.tokenService.Validate(token)
	if err != nil {
		s.logger.Error("IssueToken could not read back issued claims", "error", err)
		return "", time.Time{}, err
	}

	return token, claims.Expires(), nil
}

// ResolveIdentity turns a verified claim set into a concrete identity via
// a fresh store lookup. Tokens for deleted accounts fail here.
func (s *Auther) ResolveIdentity(ctx context.Context, claims AuthClaims) (Identity, error) {
	if claims == nil || claims.Subject() == "" {
		return nil, ErrIdentityNotFound
	}

	identity, err := s.provider.FindIdentityBySubject(ctx, claims.Subject())
	if err != nil {
		s.logger.Debug("ResolveIdentity subject lookup failed", "subject", claims.Subject(), "error", err)
		return nil, err
	}

	return identity, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "user",
	}
}

var _ Authenticator = (*Auther)(nil)
