package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_PORT", "STORE_DRIVER", "LOG_LEVEL", "MYSQL_HOST", "MYSQL_PORT",
		"MYSQL_DB", "MYSQL_USER", "MYSQL_PASS", "REDIS_ADDR", "REDIS_DB", "IDEMPOTENCY_TTL_SECONDS",
		"LOAN_CEILING", "DEFAULT_CREDIT_SCORE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	c := Load()
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, DriverMemory, c.StoreDriver)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.RedisAddr)
	assert.Equal(t, 300, c.IdempTTLSecs)
	assert.Equal(t, 10_000.0, c.LoanCeiling)
	assert.Equal(t, 650, c.DefaultCreditScore)
	assert.NoError(t, c.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOAN_CEILING", "25000.5")
	t.Setenv("DEFAULT_CREDIT_SCORE", "600")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "not-a-number")

	c := Load()
	require.NoError(t, c.Validate())
	assert.Equal(t, 2, c.RedisDB)
	assert.Equal(t, 25000.5, c.LoanCeiling)
	assert.Equal(t, 600, c.DefaultCreditScore)
	assert.Equal(t, 300, c.IdempTTLSecs, "unparsable values keep the default")
	assert.Contains(t, c.MySQLDSN(), "@tcp(db.internal:3307)/studentloan?parseTime=true")
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":  func(c *Config) { c.StoreDriver = "postgres" },
		"port":    func(c *Config) { c.StoreDriver = DriverMySQL; c.MySQLPort = "not-a-port" },
		"host":    func(c *Config) { c.StoreDriver = DriverMySQL; c.MySQLHost = "" },
		"ceiling": func(c *Config) { c.LoanCeiling = 0 },
		"score":   func(c *Config) { c.DefaultCreditScore = 900 },
		"ttl":     func(c *Config) { c.IdempTTLSecs = 0 },
		"app":     func(c *Config) { c.AppPort = "" },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			c := Load()
			mut(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9090\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	// godotenv never overrides a variable that is set, even when empty
	require.NoError(t, os.Unsetenv("APP_PORT"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "9090", os.Getenv("APP_PORT"))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
	require.NoError(t, os.Unsetenv("APP_PORT"))
}
