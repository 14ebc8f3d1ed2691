// Package testutil provides test helpers including container management
// and test client utilities.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/fantasy/internal/config"
	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	// Config reaches the container's database with a small pool.
	Config config.DatabaseConfig
}

// NewPostgresContainer starts an empty PostgreSQL test container.
// The test is skipped under -short or when Docker is unavailable.
//
// Postcondition: Returns a running container, or skips or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	t.Logf("postgres container started [%s]", time.Since(start))
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	return &PostgresContainer{container: container, Config: dbCfg}
}

// OpenStore opens a migrated Store on the container, closed when the test ends.
func (pc *PostgresContainer) OpenStore(t *testing.T) *postgres.Store {
	t.Helper()
	start := time.Now()
	store, err := postgres.OpenStore(context.Background(), pc.Config)
	if err != nil {
		t.Fatalf("opening store: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	t.Logf("store opened [%s]", time.Since(start))
	return store
}

// NewStore returns a Store on a fresh container, seeded with the built-in catalog.
func NewStore(t *testing.T) *postgres.Store {
	t.Helper()
	store := NewPostgresContainer(t).OpenStore(t)
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	if err := store.SeedCatalog(context.Background(), cat); err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}
	return store
}
