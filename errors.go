package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrMismatchedHashAndPassword is returned for a wrong password or an
// unresolvable identifier. Both cases share one message so the login
// surface never reveals whether an account exists.
var ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrIdentityNotFound is returned when a token subject no longer resolves
// to a live user record.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrDuplicateIdentity is returned when registration collides with an
// existing username or email. Unlike login failures this message is safe
// to disclose.
var ErrDuplicateIdentity = goerrors.New("username or email already registered", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("DUPLICATE_IDENTITY")

// ErrTokenRejected collapses signature mismatch, malformed structure, and
// expiry into one opaque failure. Callers get no signal about which check
// failed.
var ErrTokenRejected = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_REJECTED")

// ErrUserSuspended blocks login for suspended accounts.
var ErrUserSuspended = goerrors.New("account is suspended", goerrors.CategoryAuth).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("USER_SUSPENDED")

// ErrUserDisabled blocks login for disabled accounts.
var ErrUserDisabled = goerrors.New("account is disabled", goerrors.CategoryAuth).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("USER_DISABLED")

// ErrTooManyLoginAttempts enforces the login cooldown window.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit).
	WithTextCode("TOO_MANY_ATTEMPTS")

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// IsTokenRejectedError reports whether err is the opaque token rejection.
func IsTokenRejectedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == ErrTokenRejected.TextCode
	}
	return false
}

// IsConflictError reports whether err represents a registration conflict.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
