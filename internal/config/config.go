package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheNeo4j  = "neo4j"
)

// Config contains runtime settings for the MCP server and the CLI
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Host     string `envconfig:"MCP_HOST" default:"0.0.0.0"`
	Port     string `envconfig:"PORT" default:"8080"`

	UniProt struct {
		BaseURL      string        `envconfig:"UNIPROT_BASE_URL" default:"https://rest.uniprot.org"`
		PollInterval time.Duration `envconfig:"UNIPROT_POLL_INTERVAL" default:"5s"`
		BatchSize    int           `envconfig:"UNIPROT_BATCH_SIZE" default:"100"`
		BatchPause   time.Duration `envconfig:"UNIPROT_BATCH_PAUSE" default:"1s"`
		StrictStatus bool          `envconfig:"UNIPROT_STRICT_STATUS"`
	}

	Cache struct {
		Backend string `envconfig:"IDMAP_CACHE_BACKEND" default:"memory"`
		Dir     string `envconfig:"IDMAP_CACHE_DIR" default:".idmapping-cache"`
	}

	// Dump configures the local index; an empty path disables it
	Dump struct {
		Path      string `envconfig:"IDMAP_DUMP_PATH"`
		Deversion bool   `envconfig:"IDMAP_DUMP_DEVERSION"`
		Workers   int    `envconfig:"IDMAP_DUMP_WORKERS"`
	}

	Neo4j struct {
		URI      string `envconfig:"NEO4J_URI"`
		Username string `envconfig:"NEO4J_USERNAME"`
		Password string `envconfig:"NEO4J_PASSWORD"`
		// Database selects a named database; empty uses the server default
		Database      string        `envconfig:"NEO4J_DATABASE"`
		VerifyTimeout time.Duration `envconfig:"NEO4J_VERIFY_TIMEOUT" default:"5s"`
	}

	Sheets struct {
		CredentialsPath string `envconfig:"GOOGLE_SHEETS_CREDENTIALS_PATH"`
	}
}

// Load populates config from environment variables
func Load() (Config, error) {
	cfg, err := read()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadCLI is Load for the command line tool, which never uses the server
// cache backends and so does not validate them
func LoadCLI() (Config, error) {
	cfg, err := read()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.validateMapping()
}

func read() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	if err := c.validateMapping(); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case CacheMemory:
	case CacheFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("IDMAP_CACHE_DIR is required for the file cache backend")
		}
	case CacheNeo4j:
		var missingVars []string

		if c.Neo4j.URI == "" {
			missingVars = append(missingVars, "NEO4J_URI")
		}

		if c.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}

		if c.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}

		if len(missingVars) > 0 {
			return fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
		}
		if c.Neo4j.VerifyTimeout <= 0 {
			return fmt.Errorf("NEO4J_VERIFY_TIMEOUT must be positive, got %s", c.Neo4j.VerifyTimeout)
		}
	default:
		return fmt.Errorf("unknown IDMAP_CACHE_BACKEND %q (want memory, file or neo4j)", c.Cache.Backend)
	}

	return nil
}

func (c Config) validateMapping() error {
	if c.UniProt.BatchSize <= 0 {
		return fmt.Errorf("UNIPROT_BATCH_SIZE must be positive, got %d", c.UniProt.BatchSize)
	}
	if c.UniProt.PollInterval <= 0 {
		return fmt.Errorf("UNIPROT_POLL_INTERVAL must be positive, got %s", c.UniProt.PollInterval)
	}
	if c.UniProt.BatchPause < 0 {
		return fmt.Errorf("UNIPROT_BATCH_PAUSE must not be negative, got %s", c.UniProt.BatchPause)
	}
	if c.Dump.Workers < 0 {
		return fmt.Errorf("IDMAP_DUMP_WORKERS must not be negative, got %d", c.Dump.Workers)
	}
	return nil
}
