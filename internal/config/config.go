package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/intake/internal/extraction"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/resolver"
	"github.com/JaimeStill/intake/pkg/database"
	"github.com/JaimeStill/intake/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvIntakeEnv             = "INTAKE_ENV"
	EnvIntakeShutdownTimeout = "INTAKE_SHUTDOWN_TIMEOUT"
	EnvIntakeVersion         = "INTAKE_VERSION"
)

// DatabaseEnv names the environment overrides for the database section.
// The migration tool reads the same variables.
var DatabaseEnv = &database.Env{
	Host:            "INTAKE_DB_HOST",
	Port:            "INTAKE_DB_PORT",
	Name:            "INTAKE_DB_NAME",
	User:            "INTAKE_DB_USER",
	Password:        "INTAKE_DB_PASSWORD",
	SSLMode:         "INTAKE_DB_SSL_MODE",
	MaxOpenConns:    "INTAKE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INTAKE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INTAKE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INTAKE_DB_CONN_TIMEOUT",
	ConnRetries:     "INTAKE_DB_CONN_RETRIES",
	RetryInterval:   "INTAKE_DB_RETRY_INTERVAL",
}

var storageEnv = &storage.Env{
	Provider:         "INTAKE_STORAGE_PROVIDER",
	ContainerName:    "INTAKE_STORAGE_CONTAINER_NAME",
	ConnectionString: "INTAKE_STORAGE_CONNECTION_STRING",
	Endpoint:         "INTAKE_STORAGE_ENDPOINT",
	AccessKey:        "INTAKE_STORAGE_ACCESS_KEY",
	SecretKey:        "INTAKE_STORAGE_SECRET_KEY",
	UseSSL:           "INTAKE_STORAGE_USE_SSL",
}

var extractionEnv = &extraction.Env{
	CostPerPage:       "INTAKE_EXTRACTION_COST_PER_PAGE",
	MaxPages:          "INTAKE_EXTRACTION_MAX_PAGES",
	DPI:               "INTAKE_EXTRACTION_DPI",
	RequestsPerSecond: "INTAKE_EXTRACTION_REQUESTS_PER_SECOND",
	Burst:             "INTAKE_EXTRACTION_BURST",
}

var resolverEnv = &resolver.Env{
	FuzzyThreshold:       "INTAKE_RESOLVER_FUZZY_THRESHOLD",
	NameAddressThreshold: "INTAKE_RESOLVER_NAME_ADDRESS_THRESHOLD",
	AddressThreshold:     "INTAKE_RESOLVER_ADDRESS_THRESHOLD",
	MaxCandidates:        "INTAKE_RESOLVER_MAX_CANDIDATES",
}

var pipelineEnv = &pipeline.Env{
	ExtractionTimeout: "INTAKE_PIPELINE_EXTRACTION_TIMEOUT",
	CommitTimeout:     "INTAKE_PIPELINE_COMMIT_TIMEOUT",
	Lease:             "INTAKE_PIPELINE_LEASE",
	PollInterval:      "INTAKE_PIPELINE_POLL_INTERVAL",
	MaxWait:           "INTAKE_PIPELINE_MAX_WAIT",
	DefaultSource:     "INTAKE_PIPELINE_DEFAULT_SOURCE",
	DefaultDomain:     "INTAKE_PIPELINE_DEFAULT_DOMAIN",
}

// Config is the root configuration for the intake service.
type Config struct {
	Agent           AgentConfig       `toml:"agent"`
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Extraction      extraction.Config `toml:"extraction"`
	Resolver        resolver.Config   `toml:"resolver"`
	Pipeline        pipeline.Config   `toml:"pipeline"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the INTAKE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvIntakeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Agent.Merge(&overlay.Agent)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Extraction.Merge(&overlay.Extraction)
	c.Resolver.Merge(&overlay.Resolver)
	c.Pipeline.Merge(&overlay.Pipeline)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Agent.Finalize(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Extraction.Finalize(extractionEnv); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Resolver.Finalize(resolverEnv); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvIntakeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvIntakeVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvIntakeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
