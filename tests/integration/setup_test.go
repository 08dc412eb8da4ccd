//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cart-reservation-service/internal/infra/uow"
	"cart-reservation-service/internal/pkg/clock"
	"cart-reservation-service/internal/pkg/config"
	"cart-reservation-service/internal/usecase/commands"
	"cart-reservation-service/internal/usecase/queries"

	"cart-reservation-service/internal/infra/readstore"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "test"
	testPassword = "testpass"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerHost string
	containerPort nat.Port
	containerErr  error
)

func startPostgres(t *testing.T) (string, nat.Port) {
	t.Helper()

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}
		container, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if containerErr != nil {
			return
		}
		containerHost, containerErr = container.Host(ctx)
		if containerErr != nil {
			return
		}
		containerPort, containerErr = container.MappedPort(ctx, "5432/tcp")
	})
	require.NoError(t, containerErr, "failed to start postgres container")

	return containerHost, containerPort
}

// newTestPool creates a throwaway database on the shared container and applies
// the schema, so every test file gets isolated tables.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	host, port := startPostgres(t)
	ctx := context.Background()

	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, host, port.Port())
	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err)
	defer adminPool.Close()

	dbName := "testdb_" + uuid.New().String()[:8]
	_, err = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testUser, testPassword, host, port.Port(), dbName)
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile(filepath.Join("..", "..", "db", "schema.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	return pool
}

type stack struct {
	pool     *pgxpool.Pool
	clock    *clock.MockClock
	cfg      config.Config
	cart     commands.CartCommands
	checkout commands.CheckoutCommands
	sweep    commands.SweepCommands
	cartQ    queries.CartQueries
	orderQ   queries.OrderQueries
	stockQ   queries.StockQueries
}

func newStack(t *testing.T) *stack {
	t.Helper()

	pool := newTestPool(t)
	mockClock := clock.NewMockClock(time.Now().UTC().Truncate(time.Second))
	cfg := config.NewTestConfig()

	unit := uow.NewPostgresUoW(pool)
	cartQ := queries.NewCartQueries(readstore.NewCartReadStore(pool), mockClock)
	orderQ := queries.NewOrderQueries(readstore.NewOrderReadStore(pool))
	stockQ := queries.NewStockQueries(readstore.NewSKUReadStore(pool))

	return &stack{
		pool:     pool,
		clock:    mockClock,
		cfg:      cfg,
		cart:     commands.NewCartCommands(unit, cartQ, mockClock, cfg),
		checkout: commands.NewCheckoutCommands(unit, orderQ, commands.NewNopNotifier(), mockClock),
		sweep:    commands.NewSweepCommands(unit, mockClock, cfg),
		cartQ:    cartQ,
		orderQ:   orderQ,
		stockQ:   stockQ,
	}
}

func (s *stack) insertSKU(t *testing.T, name string, priceCents, available int32) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO skus (id, product_name, variant, size, price_cents, available_quantity)
		 VALUES ($1, $2, 'Standard', 'M', $3, $4)`,
		id, name, priceCents, available)
	require.NoError(t, err)
	return id
}

func (s *stack) availableQuantity(t *testing.T, skuID uuid.UUID) int32 {
	t.Helper()

	var qty int32
	err := s.pool.QueryRow(context.Background(),
		"SELECT available_quantity FROM skus WHERE id = $1", skuID).Scan(&qty)
	require.NoError(t, err)
	return qty
}

func (s *stack) reservedQuantity(t *testing.T, skuID uuid.UUID) int32 {
	t.Helper()

	var qty int32
	err := s.pool.QueryRow(context.Background(),
		"SELECT COALESCE(SUM(quantity), 0) FROM cart_lines WHERE sku_id = $1", skuID).Scan(&qty)
	require.NoError(t, err)
	return qty
}
