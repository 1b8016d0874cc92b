// Package config loads the dashboard's settings from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	LogFile  string `env:"LOG_FILE"`

	Session   SessionConfig
	API       APIConfig
	Dashboard DashboardConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Tracing   TracingConfig
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET"`
	TTL    time.Duration `env:"SESSION_TTL, default=12h"`
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:5000/api"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=15s"`
}

type DashboardConfig struct {
	PageSize         int           `env:"PAGE_SIZE,                default=10"`
	DepartmentDelete string        `env:"DEPARTMENT_DELETE_POLICY, default=orphan"`
	DepartmentUpdate string        `env:"DEPARTMENT_UPDATE,        default=off"`
	AllowlistEnforce bool          `env:"ALLOWLIST_ENFORCE,        default=true"`
	WorkspaceIdleTTL time.Duration `env:"WORKSPACE_IDLE_TTL,       default=30m"`
	TenantsFile      string        `env:"TENANTS_FILE"`
	ReviewTabs       []string      `env:"REVIEW_TABS"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=backoffice"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type TracingConfig struct {
	Enabled  bool   `env:"TRACING_ENABLED, default=false"`
	Endpoint string `env:"OTLP_ENDPOINT,   default=localhost:4318"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads .env (if any) and then the process environment. Variables that
// are already set win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Session.Secret == "" {
		if c.IsProduction() {
			return errors.New("config: SESSION_SECRET is required in production")
		}
		c.Session.Secret = "dev-session-secret"
	}
	switch c.Dashboard.DepartmentUpdate {
	case "off", "local", "remote":
	default:
		return fmt.Errorf("config: DEPARTMENT_UPDATE must be off, local or remote, got %q", c.Dashboard.DepartmentUpdate)
	}
	if c.Dashboard.PageSize <= 0 {
		return fmt.Errorf("config: PAGE_SIZE must be positive, got %d", c.Dashboard.PageSize)
	}
	return nil
}
