package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleViewer can inspect dashboards and market data (read only)
	RoleViewer UserRole = "viewer"
	// RoleTrader can place and amend orders (read, edit)
	RoleTrader UserRole = "trader"
	// RoleAdmin manages desk configuration (read, edit, create)
	RoleAdmin UserRole = "admin"
	// RoleOwner has full control including deletion
	RoleOwner UserRole = "owner"
)

// UserStatus captures the account lifecycle state.
type UserStatus string

const (
	// UserStatusActive is the normal operating state
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended blocks authentication until reinstated
	UserStatusSuspended UserStatus = "suspended"
	// UserStatusDisabled blocks authentication permanently
	UserStatusDisabled UserStatus = "disabled"
)

// User is the user model persisted by the user store. The password hash
// never leaves the store: it is excluded from JSON serialization.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status         UserStatus `bun:"status,notnull,default:'active'" json:"status,omitempty"`
	FullName       string     `bun:"full_name" json:"full_name,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	EmailValidated bool       `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus defaults a blank status to active.
func (u *User) EnsureStatus() {
	if u == nil {
		return
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// IsActive reports whether the account can authenticate.
func (u *User) IsActive() bool {
	if u == nil || u.DeletedAt != nil {
		return false
	}
	return u.Status == "" || u.Status == UserStatusActive
}

// statusAuthError maps a lifecycle state to its login rejection.
func statusAuthError(status UserStatus) error {
	switch status {
	case "", UserStatusActive:
		return nil
	case UserStatusSuspended:
		return ErrUserSuspended
	case UserStatusDisabled:
		return ErrUserDisabled
	default:
		return ErrUserDisabled
	}
}

// IdentityPayload is the only identity shape that crosses the wire.
type IdentityPayload struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
}

// NewIdentityPayload builds the wire view of an identity.
func NewIdentityPayload(identity Identity) IdentityPayload {
	payload := IdentityPayload{
		ID:       identity.ID(),
		Username: identity.Username(),
		Email:    identity.Email(),
		Role:     identity.Role(),
		IsActive: true,
	}

	if sa, ok := identity.(statusAwareIdentity); ok {
		payload.IsActive = statusAuthError(sa.Status()) == nil
	}

	if va, ok := identity.(verifiedAwareIdentity); ok {
		payload.IsVerified = va.Verified()
	}

	return payload
}
