package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forecourt/backoffice/internal/adapter/cache"
	"github.com/forecourt/backoffice/internal/adapter/storage/postgres"
	"github.com/forecourt/backoffice/internal/ports"
	"github.com/forecourt/backoffice/pkg/config"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB                *gorm.DB
	DSN               string
	Redis             *goredis.Client
	Cache             ports.Cache
	PostgresContainer testcontainers.Container
	RedisContainer    testcontainers.Container
	Logger            *zap.Logger
	ctx               context.Context
}

var testEnv *TestEnv

// SetupTestEnvironment initializes the test environment with containers
func SetupTestEnvironment(t *testing.T) *TestEnv {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Check if using external services (CI environment)
	if os.Getenv("DATABASE_URL") != "" {
		return setupExternalServices(t, ctx)
	}

	// Use testcontainers for local testing
	return setupContainers(t, ctx)
}

func setupExternalServices(t *testing.T, ctx context.Context) *TestEnv {
	logger, _ := zap.NewDevelopment()

	db, err := postgres.NewConnection(config.DatabaseConfig{
		URL:          os.Getenv("DATABASE_URL"),
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := postgres.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	redisClient := goredis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cacheStore, err := cache.NewRedisCache(redisURL, logger)
	if err != nil {
		t.Fatalf("Failed to create cache adapter: %v", err)
	}

	testEnv = &TestEnv{
		DB:     db,
		DSN:    os.Getenv("DATABASE_URL"),
		Redis:  redisClient,
		Cache:  cacheStore,
		Logger: logger,
		ctx:    ctx,
	}

	return testEnv
}

func setupContainers(t *testing.T, ctx context.Context) *TestEnv {
	logger, _ := zap.NewDevelopment()

	// Start Postgres container
	postgresContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("forecourt_test"),
		tcpostgres.WithUsername("forecourt"),
		tcpostgres.WithPassword("forecourt_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Skipping integration tests, cannot start postgres container: %v", err)
	}

	pgConnStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}

	db, err := postgres.NewConnection(config.DatabaseConfig{
		URL:          pgConnStr,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	if err := postgres.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Start Redis container
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Skipping integration tests, cannot start redis container: %v", err)
	}

	redisURL, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis connection string: %v", err)
	}

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse redis URL: %v", err)
	}

	redisClient := goredis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}

	cacheStore, err := cache.NewRedisCache(redisURL, logger)
	if err != nil {
		t.Fatalf("Failed to create cache adapter: %v", err)
	}

	testEnv = &TestEnv{
		DB:                db,
		DSN:               pgConnStr,
		Redis:             redisClient,
		Cache:             cacheStore,
		PostgresContainer: postgresContainer,
		RedisContainer:    redisContainer,
		Logger:            logger,
		ctx:               ctx,
	}

	return testEnv
}

// TeardownTestEnvironment cleans up the test environment
func TeardownTestEnvironment(t *testing.T) {
	if testEnv == nil {
		return
	}

	ctx := context.Background()

	if testEnv.Cache != nil {
		testEnv.Cache.Close()
	}

	if testEnv.Redis != nil {
		testEnv.Redis.Close()
	}

	if testEnv.DB != nil {
		postgres.Close(testEnv.DB)
	}

	if testEnv.PostgresContainer != nil {
		if err := testEnv.PostgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	}

	if testEnv.RedisContainer != nil {
		if err := testEnv.RedisContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	}

	testEnv = nil
}

// CleanDatabase truncates all tables
func CleanDatabase(t *testing.T, db *gorm.DB) {
	tables := []string{
		"customer_allocations",
		"nozzle_readings",
		"deliveries",
		"shift_readings",
		"nozzles",
		"pumps",
		"islands",
		"tanks",
		"customers",
		"users",
	}

	for _, table := range tables {
		if err := db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			// Table might not exist, that's ok
			t.Logf("Failed to truncate %s: %v", table, err)
		}
	}
}

// FlushRedis clears all Redis keys
func FlushRedis(t *testing.T, client *goredis.Client) {
	ctx := context.Background()
	if err := client.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
}

// OpenRawDB opens a plain database/sql connection to the test database for
// asserting on stored rows without going through the ORM mapping.
func OpenRawDB(t *testing.T, env *TestEnv) *sql.DB {
	t.Helper()

	raw, err := sql.Open("postgres", env.DSN)
	if err != nil {
		t.Fatalf("Failed to open raw connection: %v", err)
	}
	if err := raw.Ping(); err != nil {
		t.Fatalf("Failed to ping raw connection: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return raw
}
