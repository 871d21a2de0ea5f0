package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const postgresSnapshotKey = "collection"

// ConnectPostgres connects to PostgreSQL and makes sure the snapshot table exists.
func ConnectPostgres(postgresURI string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("✅ Connected to PostgreSQL")

	if err = InitPostgresTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("✅ PostgreSQL tables initialized")
	return db, nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS feedback_snapshots (
			key VARCHAR(64) PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// PostgresBackend keeps the document in one JSONB row.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT payload FROM feedback_snapshots WHERE key = $1`, postgresSnapshotKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return payload, nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO feedback_snapshots (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, postgresSnapshotKey, string(data))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
