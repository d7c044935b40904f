// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/simaogato/budgetflow/internal/logging"
)

// Supported values of BUDGET_STORE
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Store selects the ledger backend.
	// Environment variable: BUDGET_STORE
	Store string `koanf:"BUDGET_STORE"`

	// SQLitePath is the database file used by the sqlite store.
	// Environment variable: BUDGET_SQLITE_PATH
	SQLitePath string `koanf:"BUDGET_SQLITE_PATH"`

	// DBConnStr overrides the individual DB_* connection settings.
	// Environment variable: DB_CONN_STR
	DBConnStr string `koanf:"DB_CONN_STR"`

	DBHost     string `koanf:"DB_HOST"`
	DBPort     int    `koanf:"DB_PORT"`
	DBUser     string `koanf:"DB_USER"`
	DBPassword string `koanf:"DB_PASSWORD"`
	DBName     string `koanf:"DB_NAME"`
	DBSSLMode  string `koanf:"DB_SSLMODE"`

	// DBConnectAttempts bounds how often the first Postgres ping is tried.
	DBConnectAttempts uint          `koanf:"DB_CONNECT_ATTEMPTS"`
	DBConnectDelay    time.Duration `koanf:"DB_CONNECT_DELAY"`

	// GRPCAddr is the listen address of the gRPC server.
	// Environment variable: GRPC_ADDR
	GRPCAddr string `koanf:"GRPC_ADDR"`

	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Store:             StoreSQLite,
		SQLitePath:        "./data/budget.db",
		DBHost:            "localhost",
		DBPort:            5432,
		DBUser:            "postgres",
		DBPassword:        "postgres",
		DBName:            "budgetflow",
		DBSSLMode:         "disable",
		DBConnectAttempts: 5,
		DBConnectDelay:    2 * time.Second,
		GRPCAddr:          ":8080",
		LogLevel:          "INFO",
		LogFormat:         "text",
	}
}

// Load reads an optional .env file and then the process environment on top
// of the defaults. Variables already set in the environment win over .env.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	return &cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("BUDGET_SQLITE_PATH cannot be empty when using the sqlite store"))
		}
	case StorePostgres:
		if c.DBConnStr == "" {
			if c.DBHost == "" {
				errs = append(errs, errors.New("DB_HOST cannot be empty"))
			}
			if c.DBPort < 1 || c.DBPort > 65535 {
				errs = append(errs, fmt.Errorf("invalid DB_PORT %d: must be between 1 and 65535", c.DBPort))
			}
			if c.DBName == "" {
				errs = append(errs, errors.New("DB_NAME cannot be empty"))
			}
		}
		if c.DBConnectAttempts < 1 {
			errs = append(errs, errors.New("DB_CONNECT_ATTEMPTS must be at least 1"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid BUDGET_STORE %q: must be %q or %q", c.Store, StoreSQLite, StorePostgres))
	}

	if _, _, err := net.SplitHostPort(c.GRPCAddr); err != nil {
		errs = append(errs, fmt.Errorf("invalid GRPC_ADDR %q: %w", c.GRPCAddr, err))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", c.LogFormat))
	}

	return errors.Join(errs...)
}

// PostgresDSN returns DB_CONN_STR, or a DSN built from the DB_* settings
func (c *Config) PostgresDSN() string {
	if c.DBConnStr != "" {
		return c.DBConnStr
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Logging converts the log settings into a logging.Config
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	cfg.JSON = c.LogFormat == "json"
	return cfg
}
