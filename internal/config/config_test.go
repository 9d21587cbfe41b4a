package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_DRIVER", "DATABASE_URL", "JWT_SECRET", "JWT_ISSUER",
		"JWT_TTL_MINUTES", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "BCRYPT_COST",
	} {
		t.Setenv(key, kv[key])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost/taskboard",
		"JWT_SECRET":   "0123456789abcdef",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "taskboard-backend", cfg.JWTIssuer)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"PORT":                 "9090",
		"STORAGE_DRIVER":       "Memory",
		"JWT_SECRET":           "0123456789abcdef",
		"JWT_TTL_MINUTES":      "15",
		"CORS_ALLOWED_ORIGINS": "http://localhost:5173, https://app.example.com,",
		"LOG_LEVEL":            "DEBUG",
		"BCRYPT_COST":          "12",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadInvalidTTLFallsBack(t *testing.T) {
	setEnv(t, map[string]string{
		"STORAGE_DRIVER":  "memory",
		"JWT_SECRET":      "0123456789abcdef",
		"JWT_TTL_MINUTES": "-5",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]struct {
		env  map[string]string
		want string
	}{
		"missing database url": {
			env:  map[string]string{"JWT_SECRET": "0123456789abcdef"},
			want: "DATABASE_URL",
		},
		"missing secret": {
			env:  map[string]string{"STORAGE_DRIVER": "memory"},
			want: "JWT_SECRET",
		},
		"short secret": {
			env:  map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET": "short"},
			want: "JWT_SECRET",
		},
		"unknown driver": {
			env:  map[string]string{"STORAGE_DRIVER": "mongo", "JWT_SECRET": "0123456789abcdef"},
			want: "STORAGE_DRIVER",
		},
		"bad port": {
			env:  map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET": "0123456789abcdef", "PORT": "70000"},
			want: "PORT",
		},
		"bad log level": {
			env:  map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET": "0123456789abcdef", "LOG_LEVEL": "loud"},
			want: "LOG_LEVEL",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
