package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"user_service/internal/models"
	"user_service/internal/storage/migrations"

	"github.com/gofrs/uuid"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStorage is the embedded backend for single-node deployments and tests.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(ctx context.Context, dsn string) (*SQLiteStorage, error) {
	const op = "storage.NewSQLiteStorage"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// sqlite allows a single writer; one connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) CreateUser(ctx context.Context, mail, passwordHash string) (models.User, error) {
	const op = "storage.CreateUser"

	row, err := newUserRow(mail)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s(id, mail, password_hash, created_at)
	VALUES (?, ?, ?, ?);`, usersTable)

	if _, err := s.db.ExecContext(ctx, query, row.ID, row.Mail, passwordHash, row.CreatedAt); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapSQLiteError(err))
	}

	return row, nil
}

func (s *SQLiteStorage) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "storage.GetUserByID"

	var user models.User
	query := fmt.Sprintf("SELECT id, mail, created_at FROM %s WHERE id=?;", usersTable)

	err := s.db.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.Mail, &user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapSQLiteError(err))
	}

	user.CreatedAt = user.CreatedAt.UTC()

	return user, nil
}

// DeleteUser reads the row and deletes it in one transaction; sqlite does not
// report declared column types for RETURNING, so created_at would come back
// as text.
func (s *SQLiteStorage) DeleteUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "storage.DeleteUser"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var user models.User
	query := fmt.Sprintf("SELECT id, mail, created_at FROM %s WHERE id=?;", usersTable)

	err = tx.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.Mail, &user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapSQLiteError(err))
	}

	query = fmt.Sprintf("DELETE FROM %s WHERE id=?;", usersTable)
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapSQLiteError(err))
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user.CreatedAt = user.CreatedAt.UTC()

	return user, nil
}

func (s *SQLiteStorage) GetCredentialsByMail(ctx context.Context, mail string) (models.Credentials, error) {
	const op = "storage.GetCredentialsByMail"

	var cred models.Credentials
	query := fmt.Sprintf("SELECT id, password_hash FROM %s WHERE mail=?", usersTable)

	err := s.db.QueryRowContext(ctx, query, mail).Scan(&cred.UserID, &cred.PasswordHash)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, mapSQLiteError(err))
	}

	return cred, nil
}

// Migrate runs the embedded sqlite migrations on the storage's own handle.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	const op = "storage.SQLiteStorage.Migrate"

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	source, err := iofs.New(migrations.Migrations, "sqlite")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) Close() {
	_ = s.db.Close()
}

func mapSQLiteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return ErrUserExists
		}
	}

	return err
}
