package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_service/internal/config"
	"user_service/internal/models"

	"github.com/gofrs/uuid"
)

const usersTable = "users"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type Storage interface {
	CreateUser(ctx context.Context, mail, passwordHash string) (models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetCredentialsByMail(ctx context.Context, mail string) (models.Credentials, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// New opens the storage backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.DB) (Storage, error) {
	const op = "storage.New"

	var (
		st  Storage
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		st, err = NewPostgresStorage(ctx, cfg.DbURL)
	case config.DriverSQLite:
		st, err = NewSQLiteStorage(ctx, cfg.DbURL)
	default:
		err = fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

// newUserRow prepares the values a backend inserts for a new user.
func newUserRow(mail string) (models.User, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:   id,
		Mail: mail,
		// postgres keeps microseconds
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}, nil
}
