//go:build integration

package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/models"
)

func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "vault",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	store, err := NewPostgresStore(ctx, config.DatabaseConfig{
		Host:     host,
		Port:     p,
		Name:     "vault",
		User:     "test",
		Password: "test",
		MaxConns: 2,
	})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestPostgresStore_ImageLabelsUpsert(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, store.PutImageLabels(ctx, models.ImageLabelRecord{
		ImageID: "a.jpg", Bucket: "b", Labels: []string{"Dog"}, Confidence: "91.5",
	}))
	require.NoError(t, store.PutImageLabels(ctx, models.ImageLabelRecord{
		ImageID: "a.jpg", Bucket: "b", Confidence: "0",
	}))

	rec, err := store.ImageLabels(ctx, "a.jpg")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Labels)
	assert.Equal(t, "0", rec.Confidence)

	missing, err := store.ImageLabels(ctx, "nope.jpg")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgresStore_AccessLogsAppend(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.PutAccessLog(ctx, models.AccessLogRecord{
			AccessID:      uuid.NewString(),
			Timestamp:     strconv.FormatInt(time.Now().Unix(), 10),
			Status:        models.AccessUnauthorized,
			FileName:      "gate.jpg",
			SecurityLevel: models.DefaultSecurityLevel,
		}))
	}

	n, err := store.CountAccessLogs(ctx, "gate.jpg")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
