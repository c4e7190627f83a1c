package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
}

type mngr struct {
	db    *bun.DB
	users Users
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:    db,
		users: NewUsersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

// NewUserTracker adapts the Users repository to the minimal UserTracker
// surface the identity provider consumes.
func NewUserTracker(repo Users) UserTracker {
	return trackerAdapter{repo: repo}
}

type trackerAdapter struct {
	repo Users
}

func (t trackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return t.repo.GetByIdentifier(ctx, identifier)
}

func (t trackerAdapter) GetBySubject(ctx context.Context, subject string) (*User, error) {
	return t.repo.GetBySubject(ctx, subject)
}

func (t trackerAdapter) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return t.repo.TrackAttemptedLogin(ctx, user)
}

func (t trackerAdapter) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return t.repo.TrackSuccessfulLogin(ctx, user)
}
