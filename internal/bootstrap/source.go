package bootstrap

import (
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" //nolint:blankimports // PostgreSQL driver

	infracontext "github.com/jonesrussell/north-cloud/link-review/infrastructure/context"
	infraes "github.com/jonesrussell/north-cloud/link-review/infrastructure/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/config"
	"github.com/jonesrussell/north-cloud/link-review/internal/probe"
	"github.com/jonesrussell/north-cloud/link-review/internal/source"
)

// Clients holds the connections the configured source driver needs. Unused
// clients stay nil.
type Clients struct {
	DB *sqlx.DB
	ES *es.Client
}

// SetupClients connects only what cfg.Source.Driver requires.
func SetupClients(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*Clients, error) {
	c := &Clients{}

	if cfg.UsesDatabase() {
		db, err := SetupDatabase(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db
	}

	if cfg.UsesElasticsearch() {
		client, err := infraes.NewClient(ctx, infraes.Config{
			URL:        cfg.Elasticsearch.URL,
			Username:   cfg.Elasticsearch.Username,
			Password:   cfg.Elasticsearch.Password,
			APIKey:     cfg.Elasticsearch.APIKey,
			MaxRetries: cfg.Elasticsearch.MaxRetries,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
		}
		c.ES = client
	}

	return c, nil
}

// Close releases open connections.
func (c *Clients) Close(log infralogger.Logger) {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Error("Failed to close database", infralogger.Error(err))
		}
	}
}

// SetupDatabase opens and pings the results database.
func SetupDatabase(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	pingCtx, cancel := infracontext.WithPingTimeout(ctx)
	defer cancel()

	db, err := sqlx.ConnectContext(pingCtx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connection established",
		infralogger.String("host", cfg.Database.Host),
		infralogger.Int("port", cfg.Database.Port),
		infralogger.String("dbname", cfg.Database.DBName),
	)
	return db, nil
}

// SetupSource builds the configured record source.
func SetupSource(ctx context.Context, cfg *config.Config, c *Clients, log infralogger.Logger) (source.Source, error) {
	src, err := source.New(ctx, cfg.Source.Settings(), source.Deps{
		DB:     c.DB,
		ES:     c.ES,
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Record source ready",
		infralogger.String("driver", cfg.Source.Driver),
		infralogger.String("source", src.Name()),
	)
	return src, nil
}

// SetupProbe schedules background source checks when a schedule is configured.
func SetupProbe(cfg *config.Config, checker probe.Checker, log infralogger.Logger) *probe.Prober {
	if cfg.Source.ProbeSchedule == "" {
		return nil
	}
	p, err := probe.New(cfg.Source.ProbeSchedule, checker, log.With(infralogger.String("component", "source-probe")))
	if err != nil {
		log.Warn("Source probe disabled", infralogger.Error(err))
		return nil
	}
	return p
}
