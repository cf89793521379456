package database

import (
	"context"
	"os"
	"testing"
	"time"

	"altiora-api/config"

	"entgo.io/ent/dialect"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLite(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, dialect.SQLite))
	// Running it twice is harmless.
	require.NoError(t, Migrate(ctx, db, dialect.SQLite))

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	// Essays cannot exist without their applicant.
	_, err = db.Exec(`INSERT INTO application_essays (applicant_id) VALUES (?)`, uuid.NewString())
	assert.Error(t, err)

	// updated_at may never precede created_at.
	_, err = db.Exec(`INSERT INTO applicants (id, first_name, last_name, email, created_at, updated_at)
VALUES (?, 'Ada', 'Lovelace', 'ada@example.com', '2025-03-01T12:00:00.000000000Z', '2025-03-01T11:00:00.000000000Z')`, uuid.NewString())
	assert.Error(t, err)
}

func TestMigrate_UnknownDialect(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	assert.Error(t, Migrate(context.Background(), db, "mysql"))
}

func TestOpen(t *testing.T) {
	conn, err := Open(config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, dialect.SQLite, conn.Dialect)
	assert.NoError(t, conn.DB.Ping())
	assert.NoError(t, conn.Close())

	_, err = Open(config.DBConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestOpen_Postgres(t *testing.T) {
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping Postgres connection test")
	}
	cfg := config.DBConfig{
		Driver:   config.DriverPostgres,
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     5432,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		Name:     os.Getenv("TEST_DB_NAME"),
		SSLMode:  "disable",
	}
	conn, err := Open(cfg)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, dialect.Postgres, conn.Dialect)
	require.NoError(t, Migrate(context.Background(), conn.DB, conn.Dialect))
}

func TestRedisCounter(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis counter test")
	}
	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	prefix := "altiora:test:" + uuid.NewString() + ":"
	counter := NewRedisCounter(client, prefix)
	defer client.Del(ctx, prefix+"k")

	for want := int64(1); want <= 3; want++ {
		count, remaining, err := counter.Hit(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
		assert.True(t, remaining > 0 && remaining <= time.Minute, "remaining %s", remaining)
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
