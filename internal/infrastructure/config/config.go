package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	DataStore DataStoreConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host        string
	Port        int
	MetricsPort int // Port for Prometheus metrics HTTP server
}

// DataStoreConfig represents data store facade configuration
type DataStoreConfig struct {
	SchemaPath               string // Path to the YAML schema file
	DefaultPageSize          int    // Page size when a paginated request omits one
	MaxPageSize              int    // Upper bound for requested page sizes
	AllowRelationshipReplace bool   // Global default for replacing plural relations
	StrategyDriver           string // Filter and sort strategy driver, empty to follow the database driver
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Enabled    bool
	MaxEntries int // Maximum number of cached entries
	TTLMinutes int // Time-to-live for cache entries in minutes
}

// LogConfig represents logger configuration
type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool   // Human readable console output
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver   string // postgres, pgx or sqlite
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Path     string // Database file for sqlite
}

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree until we find go.mod
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// InitConfig initializes viper configuration
// env: environment name (dev, test, prod)
func InitConfig(env string) error {
	if env == "" {
		env = "dev"
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	// Set config file name based on environment
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(projectRoot)

	// Read config file (optional, ignore error if not found)
	_ = viper.ReadInConfig()

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 50051)
	viper.SetDefault("METRICS_PORT", 9090)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 15432)
	viper.SetDefault("DB_USER", "datastore")
	viper.SetDefault("DB_NAME", "datastore_dev")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_PATH", filepath.Join(projectRoot, "datastore.db"))

	viper.SetDefault("DATASTORE_SCHEMA_PATH", filepath.Join(projectRoot, "schema.yaml"))
	viper.SetDefault("DATASTORE_DEFAULT_PAGE_SIZE", 25)
	viper.SetDefault("DATASTORE_MAX_PAGE_SIZE", 100)
	viper.SetDefault("ALLOW_RELATIONSHIP_REPLACE", false)
	viper.SetDefault("DATASTORE_STRATEGY_DRIVER", "")

	viper.SetDefault("CACHE_ENABLED", true)
	viper.SetDefault("CACHE_MAX_ENTRIES", 10000)
	viper.SetDefault("CACHE_TTL_MINUTES", 5)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_DEVELOPMENT", false)

	return nil
}

// Load loads configuration from viper
func Load() (*Config, error) {
	driver := strings.ToLower(viper.GetString("DB_DRIVER"))
	if driver == "" {
		driver = "postgres"
	}

	dbPassword := viper.GetString("DB_PASSWORD")
	if driver != "sqlite" && dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required (set via environment variable or .env file)")
	}

	config := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("SERVER_HOST"),
			Port:        viper.GetInt("SERVER_PORT"),
			MetricsPort: viper.GetInt("METRICS_PORT"),
		},
		Database: DatabaseConfig{
			Driver:   driver,
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: dbPassword,
			Database: viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			Path:     viper.GetString("DB_PATH"),
		},
		DataStore: DataStoreConfig{
			SchemaPath:               viper.GetString("DATASTORE_SCHEMA_PATH"),
			DefaultPageSize:          viper.GetInt("DATASTORE_DEFAULT_PAGE_SIZE"),
			MaxPageSize:              viper.GetInt("DATASTORE_MAX_PAGE_SIZE"),
			AllowRelationshipReplace: viper.GetBool("ALLOW_RELATIONSHIP_REPLACE"),
			StrategyDriver:           viper.GetString("DATASTORE_STRATEGY_DRIVER"),
		},
		Cache: CacheConfig{
			Enabled:    viper.GetBool("CACHE_ENABLED"),
			MaxEntries: viper.GetInt("CACHE_MAX_ENTRIES"),
			TTLMinutes: viper.GetInt("CACHE_TTL_MINUTES"),
		},
		Log: LogConfig{
			Level:       viper.GetString("LOG_LEVEL"),
			Development: viper.GetBool("LOG_DEVELOPMENT"),
		},
	}

	if config.DataStore.StrategyDriver == "" {
		config.DataStore.StrategyDriver = config.Database.StrategyDriver()
	}

	return config, nil
}

// ConnectionString returns the PostgreSQL connection string, or the sqlite file DSN
func (c *DatabaseConfig) ConnectionString() string {
	if c.Driver == "sqlite" {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", c.Path)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

// StrategyDriver returns the filter and sort strategy family for the driver
func (c *DatabaseConfig) StrategyDriver() string {
	switch c.Driver {
	case "postgres", "pgx":
		return "postgres"
	default:
		return "sqlite"
	}
}
