package auth_test

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/tradekit/go-auth"
)

func newTestConfig() auth.SimpleConfig {
	return auth.SimpleConfig{
		SigningKey: "test-signing-secret",
		TokenTTL:   30 * time.Minute,
		Issuer:     "tradekit-test",
	}
}

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) GetBySubject(ctx context.Context, subject string) (*auth.User, error) {
	args := m.Called(ctx, subject)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityBySubject(ctx context.Context, subject string) (auth.Identity, error) {
	args := m.Called(ctx, subject)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// TestIdentity is a plain value implementing auth.Identity plus the
// optional status and verification surfaces.
type TestIdentity struct {
	id       string
	username string
	email    string
	role     string
	status   auth.UserStatus
	verified bool
}

func (t TestIdentity) ID() string              { return t.id }
func (t TestIdentity) Username() string        { return t.username }
func (t TestIdentity) Email() string           { return t.email }
func (t TestIdentity) Role() string            { return t.role }
func (t TestIdentity) Verified() bool          { return t.verified }
func (t TestIdentity) Status() auth.UserStatus {
	if t.status == "" {
		return auth.UserStatusActive
	}
	return t.status
}

// capturingSink records activity events in order.
type capturingSink struct {
	events []auth.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt auth.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}

// MockHTTPAuthenticator implements auth.HTTPAuthenticator for controller tests.
type MockHTTPAuthenticator struct {
	mock.Mock
}

func (m *MockHTTPAuthenticator) Login(ctx router.Context, payload auth.LoginPayload) (*auth.LoginResult, error) {
	args := m.Called(ctx, payload)
	if result, ok := args.Get(0).(*auth.LoginResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHTTPAuthenticator) Register(ctx router.Context, msg auth.RegisterUserMessage) (auth.Identity, error) {
	args := m.Called(ctx, msg)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHTTPAuthenticator) ProtectedRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc {
	m.Called(errorHandler)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			return ctx.Next()
		}
	}
}

// MockContext is a maps-backed router.Context test double. Headers,
// params, cookies, and locals are plain fields so tests can seed and
// inspect them without mock plumbing.
type MockContext struct {
	NextCalled bool
	NextErr    error

	HeadersM map[string]string
	QueriesM map[string]string
	ParamsM  map[string]string
	CookiesM map[string]string
	LocalsM  map[any]any

	// BindFunc populates the destination of Bind calls; nil means no-op.
	BindFunc func(any) error

	StatusCode int
	JSONStatus int
	JSONBody   any
	SentBody   string

	SetCookies []*router.Cookie

	MethodV string
	PathV   string

	stdCtx context.Context
}

func newMockContext() *MockContext {
	return &MockContext{
		HeadersM: map[string]string{},
		QueriesM: map[string]string{},
		ParamsM:  map[string]string{},
		CookiesM: map[string]string{},
		LocalsM:  map[any]any{},
		MethodV:  "GET",
		PathV:    "/",
		stdCtx:   context.Background(),
	}
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return m.NextErr
}

func (m *MockContext) Context() context.Context {
	return m.stdCtx
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.stdCtx = ctx
}

func (m *MockContext) Path() string {
	return m.PathV
}

func (m *MockContext) Method() string {
	return m.MethodV
}

func (m *MockContext) Body() []byte {
	return nil
}

func (m *MockContext) Status(code int) router.Context {
	m.StatusCode = code
	return m
}

func (m *MockContext) SendString(s string) error {
	m.SentBody = s
	return nil
}

func (m *MockContext) Send(b []byte) error {
	m.SentBody = string(b)
	return nil
}

func (m *MockContext) JSON(code int, val any) error {
	m.JSONStatus = code
	m.JSONBody = val
	return nil
}

func (m *MockContext) NoContent(code int) error {
	m.StatusCode = code
	return nil
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	return nil
}

func (m *MockContext) Redirect(path string, status ...int) error {
	m.PathV = path
	return nil
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	return nil
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	return nil
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.HeadersM[key] = val
	return m
}

func (m *MockContext) Header(key string) string {
	return m.HeadersM[key]
}

func (m *MockContext) Get(key string, defaultValue any) any {
	if v, ok := m.HeadersM[key]; ok {
		return v
	}
	return defaultValue
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	return defaultValue
}

func (m *MockContext) GetInt(key string, def int) int {
	return def
}

func (m *MockContext) Set(key string, val any) {
	m.LocalsM[key] = val
}

func (m *MockContext) Bind(i any) error {
	if m.BindFunc != nil {
		return m.BindFunc(i)
	}
	return nil
}

func (m *MockContext) BindJSON(i any) error {
	return m.Bind(i)
}

func (m *MockContext) BindXML(i any) error {
	return m.Bind(i)
}

func (m *MockContext) BindQuery(i any) error {
	return m.Bind(i)
}

func (m *MockContext) CookieParser(i any) error {
	return nil
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.SetCookies = append(m.SetCookies, cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if v, ok := m.CookiesM[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if v, ok := m.ParamsM[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	return defaultValue
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if v, ok := m.QueriesM[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) QueryValues(key string) []string {
	if v, ok := m.QueriesM[key]; ok {
		return []string{v}
	}
	return nil
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	return defaultValue
}

func (m *MockContext) Queries() map[string]string {
	return m.QueriesM
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	if v, ok := m.HeadersM[key]; ok {
		return v
	}
	return defaultValue
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.LocalsM[key] = value[0]
		return nil
	}
	return m.LocalsM[key]
}

func (m *MockContext) OriginalURL() string {
	return m.PathV
}

func (m *MockContext) OnNext(callback func() error) {}

func (m *MockContext) Referer() string {
	return m.HeadersM["Referer"]
}

func (m *MockContext) LocalsMerge(key any, value map[string]any) map[string]any {
	merged, _ := m.LocalsM[key].(map[string]any)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range value {
		merged[k] = v
	}
	m.LocalsM[key] = merged
	return merged
}

func (m *MockContext) FormFile(key string) (*multipart.FileHeader, error) {
	return nil, nil
}

func (m *MockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) IP() string {
	return "127.0.0.1"
}

func (m *MockContext) SendStatus(code int) error {
	m.StatusCode = code
	return nil
}

func (m *MockContext) SendStream(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.SentBody = string(b)
	return nil
}

func (m *MockContext) RouteName() string {
	return ""
}

func (m *MockContext) RouteParams() map[string]string {
	return m.ParamsM
}

var _ router.Context = (*MockContext)(nil)
