package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileName is the configuration file looked up by Load
const FileName = "linq.conf"

// Config is the content of linq.conf
type Config struct {
	Datasource   *DatasourceConfig `toml:"datasource"`
	Pool         *PoolConfig       `toml:"pool,omitempty"`
	Log          []string          `toml:"log,omitempty"` // query, info, warn, error
	DefaultAlias string            `toml:"default_alias,omitempty"`
	Strict       bool              `toml:"strict,omitempty"`
	QueryTimeout Duration          `toml:"query_timeout,omitempty"`
	SlowQuery    Duration          `toml:"slow_query,omitempty"`
	Tables       []TableConfig     `toml:"tables,omitempty"`

	path string
}

// DatasourceConfig configures the database connection
type DatasourceConfig struct {
	Provider string `toml:"provider,omitempty"` // postgresql, mysql, sqlite
	URL      string `toml:"url"`                // may use env("DATABASE_URL") or ${DATABASE_URL}
	Driver   string `toml:"driver,omitempty"`   // database/sql driver override; "pgx" bypasses pgxpool
}

// PoolConfig configures the PostgreSQL pool
type PoolConfig struct {
	MaxConns        int32    `toml:"max_conns,omitempty"`
	MinConns        int32    `toml:"min_conns,omitempty"`
	MaxConnLifetime Duration `toml:"max_conn_lifetime,omitempty"`
	MaxConnIdleTime Duration `toml:"max_conn_idle_time,omitempty"`
}

// TableConfig describes a table the SQL store may query
type TableConfig struct {
	Name       string           `toml:"name"`
	PrimaryKey string           `toml:"primary_key,omitempty"`
	Columns    []string         `toml:"columns"`
	Relations  []RelationConfig `toml:"relations,omitempty"`
}

// RelationConfig describes an includable relation of a table
type RelationConfig struct {
	Name       string `toml:"name"`
	Table      string `toml:"table"`
	LocalKey   string `toml:"local_key"`
	ForeignKey string `toml:"foreign_key"`
	Many       bool   `toml:"many,omitempty"`
}

// Duration is a time.Duration decoded from strings like "5s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load reads linq.conf. An empty configPath searches the working
// directory and its parents. A .env file found the same way is loaded
// first so the config can reference its variables.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	if configPath == "" {
		found, err := findUp(FileName)
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	cfg.path = configPath
	return cfg, nil
}

// Parse decodes, expands and validates config text
func Parse(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}

	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv() {
	if envPath, err := findUp(".env"); err == nil {
		// optional file
		_ = godotenv.Load(envPath)
	}
}

func findUp(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found", name)
		}
		dir = parent
	}
}

func (c *Config) expandEnvVars() {
	if c.Datasource != nil {
		c.Datasource.URL = expandString(c.Datasource.URL)
		c.Datasource.Provider = expandString(c.Datasource.Provider)
	}
}

var envCall = regexp.MustCompile(`env\(\s*["']([^"']+)["']\s*\)`)

// expandString expands env("VAR"), env('VAR'), ${VAR} and $VAR
func expandString(s string) string {
	s = envCall.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(envCall.FindStringSubmatch(m)[1])
	})
	return os.ExpandEnv(s)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate fills defaults and checks the configuration
func (c *Config) Validate() error {
	if c.DefaultAlias == "" {
		c.DefaultAlias = "entity"
	}
	if !identifier.MatchString(c.DefaultAlias) {
		return fmt.Errorf("default_alias %q is not a valid identifier", c.DefaultAlias)
	}
	if c.QueryTimeout.Duration < 0 {
		return fmt.Errorf("query_timeout must not be negative")
	}

	if c.Datasource != nil {
		switch strings.ToLower(c.Datasource.Provider) {
		case "", "postgresql", "postgres", "mysql", "mariadb", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("unsupported datasource.provider %q", c.Datasource.Provider)
		}
	}

	for _, level := range c.Log {
		switch strings.ToLower(level) {
		case "query", "info", "warn", "error":
		default:
			return fmt.Errorf("unknown log level %q", level)
		}
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if !identifier.MatchString(t.Name) {
			return fmt.Errorf("table name %q is not a valid identifier", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("table %q declared twice", t.Name)
		}
		seen[t.Name] = true
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %q has no columns", t.Name)
		}
		for _, col := range t.Columns {
			if !identifier.MatchString(col) {
				return fmt.Errorf("table %q: column %q is not a valid identifier", t.Name, col)
			}
		}
		for _, r := range t.Relations {
			if r.Name == "" || r.Table == "" || r.LocalKey == "" || r.ForeignKey == "" {
				return fmt.Errorf("table %q: relation %q needs name, table, local_key and foreign_key", t.Name, r.Name)
			}
		}
	}

	for _, t := range c.Tables {
		for _, r := range t.Relations {
			if !seen[r.Table] {
				return fmt.Errorf("table %q: relation %q targets undeclared table %q", t.Name, r.Name, r.Table)
			}
		}
	}

	return nil
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// GetDatabaseURL returns the expanded datasource url
func (c *Config) GetDatabaseURL() string {
	if c.Datasource != nil {
		return c.Datasource.URL
	}
	return ""
}

// GetProvider returns the configured provider, empty when it should be
// detected from the url
func (c *Config) GetProvider() string {
	if c.Datasource != nil {
		return strings.ToLower(c.Datasource.Provider)
	}
	return ""
}

// Table returns the named table config
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}

// Sample is the linq.conf written by `linq init`
const Sample = `# linq.conf
log = ["warn", "error"]
default_alias = "entity"
strict = false
query_timeout = "5s"
slow_query = "1s"

[datasource]
provider = "postgresql"
url = "env(\"DATABASE_URL\")"

[[tables]]
name = "users"
primary_key = "id"
columns = ["id", "name", "email"]

[[tables]]
name = "posts"
primary_key = "id"
columns = ["id", "title", "content", "user_id"]

  [[tables.relations]]
  name = "user"
  table = "users"
  local_key = "user_id"
  foreign_key = "id"
`
