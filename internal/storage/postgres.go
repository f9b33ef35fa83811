package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"user_service/internal/models"
	"user_service/internal/storage/migrations"

	"github.com/gofrs/uuid"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const pgUniqueViolation = "23505"

type PostgresStorage struct {
	db    *pgxpool.Pool
	dbURL string
}

func NewPostgresStorage(ctx context.Context, DbURL string) (*PostgresStorage, error) {
	const op = "storage.NewPostgresStorage"

	conn, err := pgxpool.Connect(ctx, DbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresStorage{
		db:    conn,
		dbURL: DbURL,
	}, nil
}

func (p *PostgresStorage) CreateUser(ctx context.Context, mail, passwordHash string) (models.User, error) {
	const op = "storage.CreateUser"

	row, err := newUserRow(mail)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	query := fmt.Sprintf(`INSERT INTO %s(id, mail, password_hash, created_at)
	VALUES ($1, $2, $3, $4) RETURNING id, mail, created_at;`, usersTable)

	err = p.db.QueryRow(ctx, query, row.ID, row.Mail, passwordHash, row.CreatedAt).
		Scan(&user.ID, &user.Mail, &user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapPgError(err))
	}

	user.CreatedAt = user.CreatedAt.UTC()

	return user, nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "storage.GetUserByID"

	var user models.User
	query := fmt.Sprintf("SELECT id, mail, created_at FROM %s WHERE id=$1;", usersTable)

	err := p.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Mail, &user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapPgError(err))
	}

	user.CreatedAt = user.CreatedAt.UTC()

	return user, nil
}

func (p *PostgresStorage) DeleteUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "storage.DeleteUser"

	var user models.User
	query := fmt.Sprintf("DELETE FROM %s WHERE id=$1 RETURNING id, mail, created_at;", usersTable)

	err := p.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Mail, &user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapPgError(err))
	}

	user.CreatedAt = user.CreatedAt.UTC()

	return user, nil
}

func (p *PostgresStorage) GetCredentialsByMail(ctx context.Context, mail string) (models.Credentials, error) {
	const op = "storage.GetCredentialsByMail"

	var cred models.Credentials
	query := fmt.Sprintf("SELECT id, password_hash FROM %s WHERE mail=$1", usersTable)

	err := p.db.QueryRow(ctx, query, mail).Scan(&cred.UserID, &cred.PasswordHash)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, mapPgError(err))
	}

	return cred, nil
}

// Migrate applies the embedded postgres migrations through golang-migrate's
// pgx driver, which opens its own connection from the same URL.
func (p *PostgresStorage) Migrate(ctx context.Context) error {
	const op = "storage.PostgresStorage.Migrate"

	source, err := iofs.New(migrations.Migrations, "postgres")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	instance, err := migrate.NewWithSourceInstance("iofs", source, pgxMigrateURL(p.dbURL))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer instance.Close()

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *PostgresStorage) Close() {
	p.db.Close()
}

// pgxMigrateURL swaps the scheme so golang-migrate picks its pgx driver.
func pgxMigrateURL(dbURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dbURL, prefix) {
			return "pgx://" + strings.TrimPrefix(dbURL, prefix)
		}
	}
	return dbURL
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrUserExists
	}

	return err
}
