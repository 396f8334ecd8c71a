package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresArchiveConfig holds connection settings for the crash archive.
type PostgresArchiveConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// ArchiveConfigFromEnv builds a PostgresArchiveConfig from the environment.
func ArchiveConfigFromEnv() PostgresArchiveConfig {
	return PostgresArchiveConfig{
		Host:     envOrDefault("ARCHIVE_DB_HOST", "localhost"),
		Port:     envOrDefault("ARCHIVE_DB_PORT", "5432"),
		User:     envOrDefault("ARCHIVE_DB_USER", "renderguard"),
		Password: envOrDefault("ARCHIVE_DB_PASSWORD", "localdev"),
		Database: envOrDefault("ARCHIVE_DB_NAME", "renderguard"),
		SSLMode:  envOrDefault("ARCHIVE_DB_SSL_MODE", "disable"),
	}
}

// ConnectionString returns the PostgreSQL connection string.
func (c PostgresArchiveConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// PostgresArchive writes evicted crash records to Postgres for offline
// analysis. The live ledger stays in-memory; the archive is write-only.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// NewPostgresArchive connects to the archive database.
func NewPostgresArchive(ctx context.Context, cfg PostgresArchiveConfig) (*PostgresArchive, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse archive connection string: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create archive pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping archive database: %w", err)
	}

	return &PostgresArchive{pool: pool}, nil
}

// Archive implements ArchiveSink.
func (a *PostgresArchive) Archive(ctx context.Context, records []CrashRecord) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal crash record %s: %w", r.ID, err)
		}
		batch.Queue(
			`INSERT INTO crash_archive (id, recorded_at, classification, component_id, payload)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			r.ID, r.Timestamp, string(r.Classification), r.ComponentID, payload,
		)
	}

	results := a.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("archive crash record: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (a *PostgresArchive) Close() {
	a.pool.Close()
}

var _ ArchiveSink = (*PostgresArchive)(nil)

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
