package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          int           `validate:"gt=0,lt=65536"`
	StorageDriver string        `validate:"oneof=postgres memory"`
	DatabaseURL   string        `validate:"required_if=StorageDriver postgres"`
	JWTSecret     string        `validate:"required,min=16"`
	JWTIssuer     string        `validate:"required"`
	JWTTTL        time.Duration `validate:"gt=0"`
	CORSOrigins   []string      `validate:"min=1"`
	LogLevel      string        `validate:"oneof=debug info warn error"`
	BcryptCost    int           `validate:"min=4,max=31"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Port:          v.GetInt("PORT"),
		StorageDriver: strings.ToLower(fallback(v.GetString("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(v.GetString("JWT_SECRET")),
		JWTIssuer:     fallback(v.GetString("JWT_ISSUER"), "taskboard-backend"),
		CORSOrigins:   parseCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:      strings.ToLower(fallback(v.GetString("LOG_LEVEL"), "info")),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
	}

	if ttlMinutes := v.GetInt("JWT_TTL_MINUTES"); ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("JWT_ISSUER", "taskboard-backend")
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BCRYPT_COST", 10)
}

// Validate checks field constraints and reports them by env var name.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", envNames[fe.Field()], fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

var envNames = map[string]string{
	"Port":          "PORT",
	"StorageDriver": "STORAGE_DRIVER",
	"DatabaseURL":   "DATABASE_URL",
	"JWTSecret":     "JWT_SECRET",
	"JWTIssuer":     "JWT_ISSUER",
	"JWTTTL":        "JWT_TTL_MINUTES",
	"CORSOrigins":   "CORS_ALLOWED_ORIGINS",
	"LogLevel":      "LOG_LEVEL",
	"BcryptCost":    "BCRYPT_COST",
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
