package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"LUMINA_APP_NAME",
	"LUMINA_APP_ENV",
	"LUMINA_APP_PORT",
	"LUMINA_DATABASE_DRIVER",
	"LUMINA_DATABASE_HOST",
	"LUMINA_DATABASE_PORT",
	"LUMINA_DATABASE_USER",
	"LUMINA_DATABASE_PASSWORD",
	"LUMINA_DATABASE_DBNAME",
	"LUMINA_DATABASE_SSLMODE",
	"LUMINA_DATABASE_MAX_OPEN_CONNS",
	"LUMINA_DATABASE_MAX_IDLE_CONNS",
	"LUMINA_JWT_SECRET",
	"LUMINA_SUPPLIER_FAILURE_RATE",
	"LUMINA_SUPPLIER_TIMEOUT",
	"LUMINA_FULFILLMENT_ESCALATE_ON_FAILURE",
	"LUMINA_FULFILLMENT_GUARD_TTL",
	"LUMINA_INVENTORY_LOW_STOCK_THRESHOLD",
	"LUMINA_SWAGGER_ENABLED",
	"LUMINA_HTTP_CORS_ALLOW_ORIGINS",
	"LUMINA_TELEMETRY_SAMPLING_RATIO",
}

// withCleanEnv clears every config variable and restores the originals when the test ends
func withCleanEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "lumina-storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "lumina", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, DevJWTSecret, cfg.JWT.Secret)
		assert.Equal(t, 720*time.Hour, cfg.JWT.Expiration)
		assert.Equal(t, "admin@lumina.store", cfg.Auth.BootstrapAdminEmail)
		assert.Equal(t, 1500*time.Millisecond, cfg.Supplier.MinLatency)
		assert.Equal(t, 3*time.Second, cfg.Supplier.MaxLatency)
		assert.InDelta(t, 0.1, cfg.Supplier.FailureRate, 0.0001)
		assert.Equal(t, 10*time.Second, cfg.Supplier.Timeout)
		assert.Equal(t, "YunExpress", cfg.Supplier.Carrier)
		assert.Equal(t, "12-15 Days", cfg.Supplier.EstimatedDelivery)
		assert.False(t, cfg.Fulfillment.EscalateOnFailure)
		assert.Equal(t, 3, cfg.Inventory.LowStockThreshold)
		assert.Equal(t, "+error", cfg.Checkout.DeclineTag)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-Cart-Session")
	})

	t.Run("loads values from environment variables with LUMINA prefix", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_APP_NAME", "test-app")
		os.Setenv("LUMINA_APP_ENV", "testing")
		os.Setenv("LUMINA_APP_PORT", "9000")
		os.Setenv("LUMINA_DATABASE_HOST", "testdb.local")
		os.Setenv("LUMINA_DATABASE_PORT", "5433")
		os.Setenv("LUMINA_DATABASE_USER", "testuser")
		os.Setenv("LUMINA_DATABASE_PASSWORD", "testpass")
		os.Setenv("LUMINA_DATABASE_DBNAME", "testdb")
		os.Setenv("LUMINA_DATABASE_SSLMODE", "require")
		os.Setenv("LUMINA_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("LUMINA_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("LUMINA_FULFILLMENT_ESCALATE_ON_FAILURE", "true")
		os.Setenv("LUMINA_INVENTORY_LOW_STOCK_THRESHOLD", "7")
		os.Setenv("LUMINA_SUPPLIER_FAILURE_RATE", "0.5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Fulfillment.EscalateOnFailure)
		assert.Equal(t, 7, cfg.Inventory.LowStockThreshold)
		assert.InDelta(t, 0.5, cfg.Supplier.FailureRate, 0.0001)
	})

	t.Run("accepts sqlite driver", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "lumina.db", cfg.Database.SQLitePath)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("returns error when max_idle_conns exceeds max_open_conns", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_DATABASE_MAX_OPEN_CONNS", "5")
		os.Setenv("LUMINA_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("returns error for negative max_idle_conns", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("returns error for failure rate above one", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_SUPPLIER_FAILURE_RATE", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "supplier.failure_rate")
	})

	t.Run("returns error when guard ttl is shorter than supplier timeout", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_SUPPLIER_TIMEOUT", "30s")
		os.Setenv("LUMINA_FULFILLMENT_GUARD_TTL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "guard_ttl")
	})

	t.Run("returns error for sampling ratio out of range", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("LUMINA_TELEMETRY_SAMPLING_RATIO", "2")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setProduction := func() {
		os.Setenv("LUMINA_APP_ENV", "production")
		os.Setenv("LUMINA_JWT_SECRET", "a-very-long-production-secret-of-at-least-32-chars")
		os.Setenv("LUMINA_DATABASE_PASSWORD", "secret")
		os.Setenv("LUMINA_DATABASE_SSLMODE", "require")
	}

	t.Run("valid production config", func(t *testing.T) {
		withCleanEnv(t)
		setProduction()

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		withCleanEnv(t)
		setProduction()
		os.Unsetenv("LUMINA_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required")
	})

	t.Run("short jwt secret", func(t *testing.T) {
		withCleanEnv(t)
		setProduction()
		os.Setenv("LUMINA_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("sqlite not allowed", func(t *testing.T) {
		withCleanEnv(t)
		setProduction()
		os.Setenv("LUMINA_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite")
	})

	t.Run("sslmode disable not allowed", func(t *testing.T) {
		withCleanEnv(t)
		setProduction()
		os.Setenv("LUMINA_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("swagger must be disabled", func(t *testing.T) {
		withCleanEnv(t)
		setProduction()
		os.Setenv("LUMINA_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("builds postgres url", func(t *testing.T) {
		d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "lumina", SSLMode: "disable"}
		assert.Equal(t, "postgres://u:p@db:5432/lumina?sslmode=disable", d.DSN())
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/word", DBName: "lumina", SSLMode: "disable"}
		assert.Contains(t, d.DSN(), "p%40ss%2Fword")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
