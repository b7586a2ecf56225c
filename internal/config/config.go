package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openharvest/searchgw/internal/domain/facet"
)

// Config holds the searchgw API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // optional rotated JSON log file
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds search engine connection settings.
type EngineConfig struct {
	Addrs      []string `yaml:"addrs"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	Index      string   `yaml:"index"`
	TimeoutSec int      `yaml:"timeout_sec"`
}

// CacheConfig holds result cache settings. The cache is enabled only when
// addrs is non-empty; the gateway runs fine without it.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds request validation limits and the facet schema.
type SearchConfig struct {
	DefaultSize          int                    `yaml:"default_size"`
	MaxSize              int                    `yaml:"max_size"`
	SortableFields       []string               `yaml:"sortable_fields"`
	AllowedDateIntervals []string               `yaml:"allowed_date_intervals"`
	Facets               map[string]FacetConfig `yaml:"facets"`
}

// FacetConfig describes one facet in the deployment schema.
type FacetConfig struct {
	Type     string `yaml:"type"` // terms, date_histogram
	Field    string `yaml:"field"`
	Size     int    `yaml:"size"`     // terms only
	Interval string `yaml:"interval"` // date_histogram only
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.TimeoutSec <= 0 {
		c.Engine.TimeoutSec = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Search.DefaultSize <= 0 {
		c.Search.DefaultSize = 10
	}
	if c.Search.MaxSize <= 0 {
		c.Search.MaxSize = 100
	}
	if len(c.Search.SortableFields) == 0 {
		c.Search.SortableFields = []string{"_score"}
	}
	if len(c.Search.AllowedDateIntervals) == 0 {
		c.Search.AllowedDateIntervals = []string{"year", "quarter", "month", "week", "day"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Engine.Addrs) == 0 {
		return fmt.Errorf("engine.addrs is required")
	}
	if c.Engine.Index == "" {
		return fmt.Errorf("engine.index is required")
	}
	if c.Search.MaxSize < c.Search.DefaultSize {
		return fmt.Errorf("search.max_size (%d) must not be smaller than search.default_size (%d)",
			c.Search.MaxSize, c.Search.DefaultSize)
	}

	// The result shaper sorts on _score unless told otherwise; removing it
	// from the allow-list would break requests that omit "sort".
	hasScore := false
	for _, f := range c.Search.SortableFields {
		if f == "_score" {
			hasScore = true
			break
		}
	}
	if !hasScore {
		return fmt.Errorf("search.sortable_fields must include _score")
	}

	for name, fc := range c.Search.Facets {
		switch facet.Kind(fc.Type) {
		case facet.Terms:
			if fc.Field == "" {
				return fmt.Errorf("search.facets.%s.field is required", name)
			}
			if fc.Size <= 0 {
				return fmt.Errorf("search.facets.%s.size must be positive for a terms facet", name)
			}
		case facet.DateHistogram:
			if fc.Field == "" {
				return fmt.Errorf("search.facets.%s.field is required", name)
			}
			if fc.Interval == "" {
				return fmt.Errorf("search.facets.%s.interval is required for a date_histogram facet", name)
			}
		default:
			return fmt.Errorf("search.facets.%s.type must be %q or %q, got %q",
				name, facet.Terms, facet.DateHistogram, fc.Type)
		}
	}
	return nil
}

// BuildSchema converts the facet configuration into the domain schema.
// Validate must have passed first.
func (c *Config) BuildSchema() (facet.Schema, error) {
	schema := make(facet.Schema, len(c.Search.Facets))
	for name, fc := range c.Search.Facets {
		var (
			def facet.Definition
			err error
		)
		switch facet.Kind(fc.Type) {
		case facet.Terms:
			def, err = facet.NewTerms(fc.Field, fc.Size)
		case facet.DateHistogram:
			def, err = facet.NewDateHistogram(fc.Field, fc.Interval)
		default:
			err = fmt.Errorf("unsupported facet type %q", fc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("facet %s: %w", name, err)
		}
		schema[name] = def
	}
	return schema, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
