package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// DefaultPhoneRegion is assumed when a registration phone number carries
// no international prefix.
var DefaultPhoneRegion = "US"

// RegisterUserMessage carries the fields of a registration request.
// Shape validation (length bounds, email syntax) happens at the
// transport boundary before this message is built.
type RegisterUserMessage struct {
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	UseHashid bool
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler persists new accounts through the repository
// manager inside a single transaction.
type RegisterUserHandler struct {
	repo RepositoryManager
}

// NewRegisterUserHandler returns a handler bound to the given repositories.
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// RegisterUser creates the account, rejecting duplicates before hashing.
func (h *RegisterUserHandler) RegisterUser(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.ensureAvailable(ctx, tx, msg); err != nil {
			return err
		}

		hash, err := HashPassword(msg.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = msg.Email
		user.Phone = normalizePhone(msg.Phone)
		user.FullName = msg.FullName
		user.Role = UserRole(msg.Role)
		user.Username = getUsername(msg.Username, msg.Email)
		if msg.UseHashid {
			if id, err := hashid.NewUUID(msg.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, ErrDuplicateIdentity.Message).
				WithTextCode(ErrDuplicateIdentity.TextCode)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	return user, nil
}

func (h *RegisterUserHandler) ensureAvailable(ctx context.Context, tx bun.IDB, msg RegisterUserMessage) error {
	for _, identifier := range []string{msg.Username, msg.Email} {
		if identifier == "" {
			continue
		}
		if _, err := h.repo.Users().GetByIdentifierTx(ctx, tx, identifier); err == nil {
			return ErrDuplicateIdentity
		}
	}
	return nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}

// normalizePhone formats a phone number to E.164. Numbers that do not
// parse are dropped rather than failing the registration.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return ""
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
