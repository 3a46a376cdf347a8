package config

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "APP_PORT", "DATABASE_URL", "DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME",
		"JWT_SECRET", "BETTER_AUTH_SECRET", "TOKEN_TTL", "BCRYPT_COST", "CORS_ORIGINS", "MIGRATE_ON_START",
		"EVENTS_ENABLED", "RABBITMQ_URL", "AMQP_URL", "EVENTS_QUEUE",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_TOKENS",
		"RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_KEY_STRATEGY", "RATE_LIMIT_PREFIX",
		"REDIS_ADDR", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_TLS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "u:p@tcp(db:3306)/tasks?parseTime=true&loc=UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.True(t, cfg.MigrateOnStart)
	assert.Empty(t, cfg.JWTSecret)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "task.events", cfg.Events.Queue)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	mc, err := mysql.ParseDSN(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "u", mc.User)
	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "tasks", mc.DBName)
}

func TestLoad_DatabaseURLForcesParseTimeAndUTC(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "app:pw@tcp(mysql:3306)/tasks?loc=Local&charset=utf8mb4")

	cfg, err := Load()
	require.NoError(t, err)

	mc, err := mysql.ParseDSN(cfg.DSN())
	require.NoError(t, err)
	assert.True(t, mc.ParseTime)
	assert.Equal(t, time.UTC, mc.Loc)
	assert.Equal(t, "app", mc.User)
	assert.Equal(t, "pw", mc.Passwd)
	assert.Equal(t, "mysql:3306", mc.Addr)
	assert.Equal(t, "tasks", mc.DBName)
}

func TestLoad_InvalidDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "not a dsn")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_DSNFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "pw")
	t.Setenv("DB_HOST", "mysql")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "tasks")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(mysql:3306)/tasks?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DSN())

	cfg.DBPass = ""
	assert.Equal(t, "app@tcp(mysql:3306)/tasks?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DSN())
}

func TestLoad_MissingDatabaseSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_USER", "app")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "DB_PORT")
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.NotContains(t, err.Error(), "DB_USER")
}

func TestLoad_SecretFallbackAndOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "u:p@tcp(db:3306)/tasks")
	t.Setenv("BETTER_AUTH_SECRET", "fallback")
	t.Setenv("APP_ENV", "production")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", " https://a.example/ , https://b.example ,")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("RABBITMQ_URL", "amqp://mq:5672/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.JWTSecret)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "amqp://mq:5672/", cfg.Events.URL)

	t.Setenv("JWT_SECRET", "primary")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.JWTSecret)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "u:p@tcp(db:3306)/tasks")
	t.Setenv("TOKEN_TTL", "-1h")
	t.Setenv("BCRYPT_COST", "40")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_TTL")
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestLoadRateLimitConfig(t *testing.T) {
	clearEnv(t)

	rl := LoadRateLimitConfig()
	assert.True(t, rl.Enabled)
	assert.Equal(t, 10, rl.Capacity)
	assert.Equal(t, 6*time.Second, rl.RefillInterval)
	assert.Equal(t, "ip_route", rl.KeyStrategy)

	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	rl = LoadRateLimitConfig()
	assert.Equal(t, 3, rl.Capacity)
	assert.Equal(t, 5*time.Minute, rl.TTL, "ttl is raised to cover a full refill")
}

func TestLoadRedisConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "1")

	rc := LoadRedisConfig()
	assert.Equal(t, "cache:6380", rc.Addr)
	assert.Equal(t, 2, rc.DB)
	assert.True(t, rc.TLS)
}
