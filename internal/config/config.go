// Package config defines the link-review service configuration.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robfig/cron/v3"

	infraconfig "github.com/jonesrussell/north-cloud/link-review/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/source"
)

const (
	defaultServiceName     = "link-review"
	defaultServicePort     = 8070
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultSourcePath      = "data/links.csv"
	defaultSourceTimeout   = 10 * time.Second
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultESURL           = "http://localhost:9200"
	defaultESIndex         = "link_classifications"
	defaultRedisAddress    = "localhost:6379"
	defaultRedisStream     = "link-review-events"
	defaultFeedMaxClients  = 200
	defaultFeedHeartbeat   = 15 * time.Second
)

// Config is the root configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Logging       infralogger.Config  `yaml:"logging"`
	Source        SourceConfig        `yaml:"source"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Redis         RedisConfig         `yaml:"redis"`
	Assistant     AssistantConfig     `yaml:"assistant"`
	Auth          AuthConfig          `yaml:"auth"`
	Feed          FeedConfig          `yaml:"feed"`
}

// ServiceConfig holds HTTP server settings.
type ServiceConfig struct {
	Name         string        `env:"SERVICE_NAME"      yaml:"name"`
	Version      string        `env:"SERVICE_VERSION"   yaml:"version"`
	Port         int           `env:"LINK_REVIEW_PORT"  yaml:"port"`
	Debug        bool          `env:"APP_DEBUG"         yaml:"debug"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS"      yaml:"cors_origins"`
}

// SourceConfig selects the base record source.
type SourceConfig struct {
	Driver     string        `env:"SOURCE_DRIVER"      yaml:"driver"`
	Path       string        `env:"SOURCE_PATH"        yaml:"path"`
	Watch      bool          `env:"SOURCE_WATCH"       yaml:"watch"`
	URL        string        `env:"SOURCE_URL"         yaml:"url"`
	Timeout    time.Duration `env:"SOURCE_TIMEOUT"     yaml:"timeout"`
	Index      string        `env:"SOURCE_INDEX"       yaml:"index"`
	MaxRecords int           `env:"SOURCE_MAX_RECORDS" yaml:"max_records"`
	UserID     string        `env:"SOURCE_USER_ID"     yaml:"user_id"`
	// ProbeSchedule is a cron spec for background source checks. Empty disables them.
	ProbeSchedule string `env:"SOURCE_PROBE_SCHEDULE" yaml:"probe_schedule"`
	// Keywords maps category names to categorizer keywords.
	Keywords map[string][]string `yaml:"keywords"`
}

// DatabaseConfig is used by the postgres source.
type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"` //nolint:gosec // DB connection config
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ElasticsearchConfig is used by the elasticsearch source.
type ElasticsearchConfig struct {
	URL        string `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username   string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password   string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"` //nolint:gosec // ES connection config
	APIKey     string `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	MaxRetries int    `yaml:"max_retries"`
}

// RedisConfig controls the audit event stream.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"`
	Stream   string `env:"REDIS_EVENTS_STREAM"  yaml:"stream"`
	MaxLen   int64  `yaml:"max_len"`
	PoolSize int    `env:"REDIS_POOL_SIZE"      yaml:"pool_size"`
}

// AssistantConfig controls the analyst assistant.
type AssistantConfig struct {
	Enabled           bool          `env:"ASSISTANT_ENABLED"  yaml:"enabled"`
	APIKey            string        `env:"ANTHROPIC_API_KEY"  yaml:"api_key"`
	Model             string        `env:"ASSISTANT_MODEL"    yaml:"model"`
	BaseURL           string        `env:"ANTHROPIC_BASE_URL" yaml:"base_url"`
	MaxTokens         int           `yaml:"max_tokens"`
	MaxRetries        int           `yaml:"max_retries"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// AuthConfig enables JWT auth on the API when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// FeedConfig controls the SSE live audit feed.
type FeedConfig struct {
	Enabled           bool          `env:"FEED_ENABLED" yaml:"enabled"`
	MaxClients        int           `yaml:"max_clients"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults(path, SetDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills zero values.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	setSourceDefaults(&cfg.Source)

	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime
	}

	if cfg.Elasticsearch.URL == "" {
		cfg.Elasticsearch.URL = defaultESURL
	}

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = defaultRedisStream
	}

	if cfg.Feed.MaxClients == 0 {
		cfg.Feed.MaxClients = defaultFeedMaxClients
	}
	if cfg.Feed.HeartbeatInterval == 0 {
		cfg.Feed.HeartbeatInterval = defaultFeedHeartbeat
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = "dev"
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = defaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = defaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = defaultIdleTimeout
	}
	if len(s.CORSOrigins) == 0 {
		s.CORSOrigins = []string{"http://localhost:3000"}
	}
}

func setSourceDefaults(s *SourceConfig) {
	if s.Driver == "" {
		s.Driver = source.DriverCSV
	}
	if s.Path == "" && (s.Driver == source.DriverCSV || s.Driver == source.DriverXLSX) {
		s.Path = defaultSourcePath
	}
	if s.Timeout == 0 {
		s.Timeout = defaultSourceTimeout
	}
	if s.Index == "" {
		s.Index = defaultESIndex
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if c.Redis.Enabled {
		if err := infraconfig.ValidateRequired("redis.address", c.Redis.Address); err != nil {
			return err
		}
	}
	if c.Assistant.Enabled {
		if err := infraconfig.ValidateRequired("assistant.api_key", c.Assistant.APIKey); err != nil {
			return err
		}
	}
	if c.Feed.MaxClients < -1 {
		return &infraconfig.ValidationError{Field: "feed.max_clients", Message: "must be -1 (unlimited) or positive"}
	}
	return nil
}

func (c *Config) validateSource() error {
	s := c.Source
	if err := infraconfig.ValidateOneOf("source.driver", s.Driver, source.Drivers...); err != nil {
		return err
	}
	if _, err := s.CategoryKeywords(); err != nil {
		return err
	}
	if s.ProbeSchedule != "" {
		if _, err := cron.ParseStandard(s.ProbeSchedule); err != nil {
			return &infraconfig.ValidationError{Field: "source.probe_schedule", Message: err.Error()}
		}
	}

	switch s.Driver {
	case source.DriverCSV, source.DriverXLSX:
		return infraconfig.ValidateRequired("source.path", s.Path)
	case source.DriverHTTP:
		return infraconfig.ValidateRequired("source.url", s.URL)
	case source.DriverPostgres:
		if err := infraconfig.ValidateRequired("database.host", c.Database.Host); err != nil {
			return err
		}
		if err := infraconfig.ValidateRequired("database.user", c.Database.User); err != nil {
			return err
		}
		if err := infraconfig.ValidateRequired("database.dbname", c.Database.DBName); err != nil {
			return err
		}
		return infraconfig.ValidatePort("database.port", c.Database.Port)
	case source.DriverElasticsearch:
		return infraconfig.ValidateRequired("elasticsearch.url", c.Elasticsearch.URL)
	}
	return nil
}

var errUnknownCategory = errors.New("unknown category")

// CategoryKeywords converts Keywords to categorizer input. Nil means use
// the built-in keyword lists.
func (s SourceConfig) CategoryKeywords() (map[domain.Category][]string, error) {
	if len(s.Keywords) == 0 {
		return nil, nil
	}
	out := make(map[domain.Category][]string, len(s.Keywords))
	for name, words := range s.Keywords {
		cat, ok := domain.ParseCategory(name)
		if !ok {
			return nil, &infraconfig.ValidationError{
				Field:   "source.keywords." + name,
				Message: errUnknownCategory.Error(),
			}
		}
		out[cat] = append(out[cat], words...)
	}
	return out, nil
}

// Settings translates the source section for source.New.
func (s SourceConfig) Settings() source.Settings {
	keywords, _ := s.CategoryKeywords()
	return source.Settings{
		Driver:     s.Driver,
		Path:       s.Path,
		Watch:      s.Watch,
		URL:        s.URL,
		Timeout:    s.Timeout,
		Index:      s.Index,
		MaxRecords: s.MaxRecords,
		UserID:     s.UserID,
		Keywords:   keywords,
	}
}

// UsesDatabase reports whether the postgres connection is needed.
func (c *Config) UsesDatabase() bool { return c.Source.Driver == source.DriverPostgres }

// UsesElasticsearch reports whether the elasticsearch client is needed.
func (c *Config) UsesElasticsearch() bool { return c.Source.Driver == source.DriverElasticsearch }

// FileDriver reports whether the source reads an export file.
func (c *Config) FileDriver() bool {
	return slices.Contains([]string{source.DriverCSV, source.DriverXLSX}, c.Source.Driver)
}
