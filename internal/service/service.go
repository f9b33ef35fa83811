package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"user_service/internal/auth"
	"user_service/internal/mailer"
	"user_service/internal/models"
	"user_service/internal/storage"

	"github.com/gofrs/uuid"
)

const notifyTimeout = 30 * time.Second

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	CreateUser(ctx context.Context, in models.UniqueUser) (models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) (models.User, error)
	Login(ctx context.Context, in models.UniqueUser) (string, error)
	Ready(ctx context.Context) error
}

type service struct {
	storage  storage.Storage
	tokens   *auth.TokenIssuer
	notifier mailer.Notifier
	log      *slog.Logger

	pending sync.WaitGroup
}

func NewService(st storage.Storage, tokens *auth.TokenIssuer, notifier mailer.Notifier, lgr *slog.Logger) *service {
	return &service{
		storage:  st,
		tokens:   tokens,
		notifier: notifier,
		log:      lgr,
	}
}

func (s *service) CreateUser(ctx context.Context, in models.UniqueUser) (models.User, error) {
	const op = "service.CreateUser"

	in = in.Normalize()

	passwordHash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.CreateUser(ctx, in.Mail, passwordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.notifyCreated(ctx, user)

	return user, nil
}

// notifyCreated sends the welcome mail in the background. It outlives the
// request and its result is only logged.
func (s *service) notifyCreated(ctx context.Context, user models.User) {
	log := s.log.With(slog.String("op", "service.notifyCreated"), slog.Any("user_id", user.ID))

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyUserCreated(ctx, user); err != nil {
			log.Warn("failed to send notification", slog.Any("error", err))
			return
		}

		log.Debug("notification sent")
	}()
}

func (s *service) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "service.GetUserByID"

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "service.DeleteUser"

	user, err := s.storage.DeleteUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Login returns a signed token for matching credentials. An unknown mail and
// a wrong password both yield ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, in models.UniqueUser) (string, error) {
	const op = "service.Login"

	in = in.Normalize()

	cred, err := s.storage.GetCredentialsByMail(ctx, in.Mail)
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if ok := auth.CheckPasswordHash(cred.PasswordHash, in.Password); !ok {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.tokens.MustGenerateJWT(cred.UserID), nil
}

func (s *service) Ready(ctx context.Context) error {
	const op = "service.Ready"

	if err := s.storage.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Wait blocks until every background notification has finished.
func (s *service) Wait() {
	s.pending.Wait()
}
