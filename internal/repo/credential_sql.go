package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialect holds the statements that differ between SQL engines.
type Dialect struct {
	Name   string
	Create string
	Upsert string
	Select string
	Delete string
}

var (
	PostgresDialect = Dialect{
		Name: "postgres",
		Create: `CREATE TABLE IF NOT EXISTS dashboard_credentials (
			session_id  TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			token       TEXT NOT NULL,
			expires_at  TIMESTAMPTZ NULL,
			updated_at  TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (session_id, storage_key)
		)`,
		Upsert: `INSERT INTO dashboard_credentials (session_id, storage_key, token, expires_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (session_id, storage_key) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		Select: `SELECT token, expires_at FROM dashboard_credentials WHERE session_id = $1 AND storage_key = $2`,
		Delete: `DELETE FROM dashboard_credentials WHERE session_id = $1 AND storage_key = $2`,
	}

	SQLiteDialect = Dialect{
		Name: "sqlite",
		Create: `CREATE TABLE IF NOT EXISTS dashboard_credentials (
			session_id  TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			token       TEXT NOT NULL,
			expires_at  DATETIME NULL,
			updated_at  DATETIME NOT NULL,
			PRIMARY KEY (session_id, storage_key)
		)`,
		Upsert: `INSERT INTO dashboard_credentials (session_id, storage_key, token, expires_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (session_id, storage_key) DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at, updated_at = excluded.updated_at`,
		Select: `SELECT token, expires_at FROM dashboard_credentials WHERE session_id = ? AND storage_key = ?`,
		Delete: `DELETE FROM dashboard_credentials WHERE session_id = ? AND storage_key = ?`,
	}

	MySQLDialect = Dialect{
		Name: "mysql",
		Create: `CREATE TABLE IF NOT EXISTS dashboard_credentials (
			session_id  VARCHAR(64) NOT NULL,
			storage_key VARCHAR(64) NOT NULL,
			token       TEXT NOT NULL,
			expires_at  DATETIME NULL,
			updated_at  DATETIME NOT NULL,
			PRIMARY KEY (session_id, storage_key)
		)`,
		Upsert: `INSERT INTO dashboard_credentials (session_id, storage_key, token, expires_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE token = VALUES(token), expires_at = VALUES(expires_at), updated_at = VALUES(updated_at)`,
		Select: `SELECT token, expires_at FROM dashboard_credentials WHERE session_id = ? AND storage_key = ?`,
		Delete: `DELETE FROM dashboard_credentials WHERE session_id = ? AND storage_key = ?`,
	}
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return PostgresDialect, nil
	case "sqlite":
		return SQLiteDialect, nil
	case "mysql":
		return MySQLDialect, nil
	}
	return Dialect{}, fmt.Errorf("unsupported credential store driver %q", driver)
}

type SQLCredentialRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLCredentialRepository creates the credentials table if needed.
func NewSQLCredentialRepository(db *sql.DB, dialect Dialect) (*SQLCredentialRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, dialect.Create); err != nil {
		return nil, fmt.Errorf("failed to create credentials table (%s): %w", dialect.Name, err)
	}
	return &SQLCredentialRepository{db: db, dialect: dialect}, nil
}

func (r *SQLCredentialRepository) Load(ctx context.Context, sessionID, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var token string
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, r.dialect.Select, sessionID, key).Scan(&token, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}

	if expiresAt.Valid && !time.Now().UTC().Before(expiresAt.Time) {
		_ = r.Delete(ctx, sessionID, key)
		return "", ErrCredentialNotFound
	}
	return token, nil
}

func (r *SQLCredentialRepository) Save(ctx context.Context, sessionID, key, token string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(ttl), Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, r.dialect.Upsert, sessionID, key, token, expiresAt, now); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *SQLCredentialRepository) Delete(ctx context.Context, sessionID, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, r.dialect.Delete, sessionID, key); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
