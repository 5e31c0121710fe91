package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted in database.driver.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverDatastore = "datastore"
)

// Config holds the application configuration.
type Config struct {
	Server      ServerConfig    `mapstructure:"server"`
	App         AppConfig       `mapstructure:"app"`
	OTel        OTelConfig      `mapstructure:"otel"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Datastore   DatastoreConfig `mapstructure:"datastore"`
	Environment string          `mapstructure:"environment"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Debug   bool   `mapstructure:"debug"`
}

// OTelConfig controls export of traces, metrics and logs.
type OTelConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"exporter_otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// DatabaseConfig selects the storage engine. DSN is a file path for
// sqlite and a connection string for postgres.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type DatastoreConfig struct {
	ProjectID string `mapstructure:"project_id"`
}

// Load returns configuration from, in increasing precedence, defaults, the
// YAML file named by CONFIG_FILE, a .env file in the working directory and
// environment variables. Nested keys map to env names with "." replaced by
// "_", e.g. DATABASE_DRIVER.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("app.name", "Task Management API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)
	v.SetDefault("otel.enabled", true)
	v.SetDefault("otel.exporter_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel.service_name", "task-management-api")
	v.SetDefault("environment", "development")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "./data/task_management.db")
	v.SetDefault("datastore.project_id", "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Shorter names kept for existing deployments.
	for key, envs := range map[string][]string{
		"server.port":  {"SERVER_PORT", "PORT"},
		"app.debug":    {"APP_DEBUG", "DEBUG"},
		"database.dsn": {"DATABASE_DSN", "DATABASE_URL"},
	} {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverDatastore:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("server port must not be empty")
	}
	return nil
}
