package auth_test

import (
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradekit/go-auth"
)

type testLoginPayload struct {
	identifier string
	password   string
}

func (p testLoginPayload) GetIdentifier() string { return p.identifier }
func (p testLoginPayload) GetPassword() string   { return p.password }

func newRouteAuthenticator(t *testing.T, provider *MockIdentityProvider) (*auth.RouteAuthenticator, *auth.Auther) {
	t.Helper()
	auther := auth.NewAuthenticator(provider, newTestConfig())
	routeAuth, err := auth.NewHTTPAuthenticator(auther, newTestConfig())
	require.NoError(t, err)
	return routeAuth, auther
}

func TestRouteAuthenticatorLogin(t *testing.T) {
	provider := new(MockIdentityProvider)
	routeAuth, _ := newRouteAuthenticator(t, provider)

	identity := TestIdentity{id: "user-1", username: "trader.jane", role: "trader"}
	mc := newMockContext()

	provider.On("VerifyIdentity", mc.Context(), "trader.jane", "password123").
		Return(identity, nil).Once()

	result, err := routeAuth.Login(mc, testLoginPayload{identifier: "trader.jane", password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "bearer", result.TokenType)

	provider.AssertExpectations(t)
}

func TestRouteAuthenticatorLoginPassesErrorThrough(t *testing.T) {
	provider := new(MockIdentityProvider)
	routeAuth, _ := newRouteAuthenticator(t, provider)

	mc := newMockContext()
	provider.On("VerifyIdentity", mc.Context(), "trader.jane", "nope").
		Return(nil, auth.ErrMismatchedHashAndPassword).Once()

	result, err := routeAuth.Login(mc, testLoginPayload{identifier: "trader.jane", password: "nope"})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}

func TestProtectedRouteAcceptsBearerToken(t *testing.T) {
	provider := new(MockIdentityProvider)
	routeAuth, auther := newRouteAuthenticator(t, provider)

	identity := TestIdentity{id: "user-1", username: "trader.jane", role: "trader"}
	token, _, err := auther.IssueToken(identity)
	require.NoError(t, err)

	mc := newMockContext()
	mc.HeadersM["Authorization"] = "Bearer " + token

	provider.On("FindIdentityBySubject", mc.Context(), "user-1").
		Return(identity, nil).Once()

	handler := routeAuth.ProtectedRoute(nil)(func(c router.Context) error { return nil })
	require.NoError(t, handler(mc))

	assert.True(t, mc.NextCalled)

	claims, ok := mc.LocalsM["user"].(auth.AuthClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims.Subject())
	assert.Equal(t, "trader", claims.Role())

	resolved, ok := mc.LocalsM["identity"].(TestIdentity)
	require.True(t, ok)
	assert.Equal(t, "user-1", resolved.ID())

	// the enricher mirrors both into the standard context
	fromCtx, found := auth.IdentityFromContext(mc.Context())
	require.True(t, found)
	assert.Equal(t, "user-1", fromCtx.ID())

	provider.AssertExpectations(t)
}

func TestProtectedRouteRejectsMissingCredential(t *testing.T) {
	provider := new(MockIdentityProvider)
	routeAuth, _ := newRouteAuthenticator(t, provider)

	mc := newMockContext()

	handler := routeAuth.ProtectedRoute(nil)(func(c router.Context) error { return nil })
	require.NoError(t, handler(mc))

	assert.False(t, mc.NextCalled)
	assert.Equal(t, router.StatusUnauthorized, mc.JSONStatus)

	body, ok := mc.JSONBody.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "authentication required", body["message"])
}

func TestProtectedRouteRejectsBadToken(t *testing.T) {
	provider := new(MockIdentityProvider)
	routeAuth, _ := newRouteAuthenticator(t, provider)

	mc := newMockContext()
	mc.HeadersM["Authorization"] = "Bearer not-a-token"

	handler := routeAuth.ProtectedRoute(nil)(func(c router.Context) error { return nil })
	require.NoError(t, handler(mc))

	assert.False(t, mc.NextCalled)
	assert.Equal(t, router.StatusUnauthorized, mc.JSONStatus)

	body, ok := mc.JSONBody.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, body["success"])
	// the response never says why the token was rejected
	assert.Equal(t, "invalid or expired token", body["message"])
}

func TestProtectedRouteRejectsStaleSubject(t *testing.T) {
	provider := new(MockIdentityProvider)
	routeAuth, auther := newRouteAuthenticator(t, provider)

	token, _, err := auther.IssueToken(TestIdentity{id: "gone", role: "trader"})
	require.NoError(t, err)

	mc := newMockContext()
	mc.HeadersM["Authorization"] = "Bearer " + token

	provider.On("FindIdentityBySubject", mc.Context(), "gone").
		Return(nil, auth.ErrIdentityNotFound).Once()

	handler := routeAuth.ProtectedRoute(nil)(func(c router.Context) error { return nil })
	require.NoError(t, handler(mc))

	assert.False(t, mc.NextCalled)
	assert.Equal(t, router.StatusUnauthorized, mc.JSONStatus)
	assert.Nil(t, mc.LocalsM["user"])
}

func TestMakeClientRouteAuthErrorHandler(t *testing.T) {
	provider := new(MockIdentityProvider)
	routeAuth, _ := newRouteAuthenticator(t, provider)

	t.Run("optional auth lets the request through", func(t *testing.T) {
		mc := newMockContext()
		handler := routeAuth.ProtectedRoute(routeAuth.MakeClientRouteAuthErrorHandler(true))(
			func(c router.Context) error { return nil })

		require.NoError(t, handler(mc))
		assert.True(t, mc.NextCalled)
		assert.Nil(t, mc.LocalsM["user"])
	})

	t.Run("required auth still rejects", func(t *testing.T) {
		mc := newMockContext()
		handler := routeAuth.ProtectedRoute(routeAuth.MakeClientRouteAuthErrorHandler(false))(
			func(c router.Context) error { return nil })

		require.NoError(t, handler(mc))
		assert.False(t, mc.NextCalled)
		assert.Equal(t, router.StatusUnauthorized, mc.JSONStatus)
	})
}
