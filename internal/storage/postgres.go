package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/models"
	"github.com/your-org/identity-vault/internal/observability"
)

const schema = `
CREATE TABLE IF NOT EXISTS image_labels (
	image_id   TEXT PRIMARY KEY,
	bucket     TEXT NOT NULL,
	labels     TEXT[] NOT NULL DEFAULT '{}',
	confidence TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS access_logs (
	access_id      UUID PRIMARY KEY,
	timestamp      TEXT NOT NULL,
	status         TEXT NOT NULL,
	file_name      TEXT NOT NULL,
	security_level TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore persists the same records as DynamoDBStore for deployments
// without DynamoDB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the record tables if they don't exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) PutImageLabels(ctx context.Context, rec models.ImageLabelRecord) error {
	labels := rec.Labels
	if labels == nil {
		labels = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO image_labels (image_id, bucket, labels, confidence)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (image_id) DO UPDATE
		 SET bucket = EXCLUDED.bucket, labels = EXCLUDED.labels,
		     confidence = EXCLUDED.confidence, updated_at = NOW()`,
		rec.ImageID, rec.Bucket, labels, rec.Confidence,
	)
	if err != nil {
		return fmt.Errorf("put image labels %s: %w", rec.ImageID, err)
	}
	observability.RecordsWritten.WithLabelValues("image_labels").Inc()
	return nil
}

func (s *PostgresStore) PutAccessLog(ctx context.Context, rec models.AccessLogRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO access_logs (access_id, timestamp, status, file_name, security_level)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.AccessID, rec.Timestamp, string(rec.Status), rec.FileName, rec.SecurityLevel,
	)
	if err != nil {
		return fmt.Errorf("put access log %s: %w", rec.AccessID, err)
	}
	observability.RecordsWritten.WithLabelValues("access_logs").Inc()
	return nil
}

// ImageLabels returns the stored record for a key, or nil if none exists.
func (s *PostgresStore) ImageLabels(ctx context.Context, imageID string) (*models.ImageLabelRecord, error) {
	rec := &models.ImageLabelRecord{}
	err := s.pool.QueryRow(ctx,
		`SELECT image_id, bucket, labels, confidence FROM image_labels WHERE image_id = $1`, imageID,
	).Scan(&rec.ImageID, &rec.Bucket, &rec.Labels, &rec.Confidence)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get image labels: %w", err)
	}
	return rec, nil
}

// CountAccessLogs returns how many access log rows reference a file.
func (s *PostgresStore) CountAccessLogs(ctx context.Context, fileName string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM access_logs WHERE file_name = $1`, fileName,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count access logs: %w", err)
	}
	return n, nil
}
