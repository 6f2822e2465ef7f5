// Package elasticsearch builds go-elasticsearch clients whose connection is
// verified, with retries, before use.
package elasticsearch

import (
	"context"
	"fmt"
	"io"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/infrastructure/retry"
)

// NewClient creates a client and pings the cluster until it answers or the
// retry budget is spent.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()
	url := normalizeURL(cfg.URL)

	esCfg := es.Config{
		Addresses:  []string{url},
		MaxRetries: cfg.MaxRetries,
	}
	switch {
	case cfg.Username != "" && cfg.Password != "":
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	case cfg.APIKey != "":
		esCfg.APIKey = cfg.APIKey
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	log.Info("Verifying Elasticsearch connection", logger.String("url", url))
	if err = retry.Do(ctx, cfg.Retry, func() error {
		return Ping(ctx, client, cfg)
	}); err != nil {
		return nil, fmt.Errorf("connect to elasticsearch %s: %w", url, err)
	}
	log.Info("Elasticsearch connection established", logger.String("url", url))

	return client, nil
}

// Ping checks the cluster answers within cfg.PingTimeout.
func Ping(ctx context.Context, client *es.Client, cfg Config) error {
	if cfg.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("ping returned %s: %s", res.Status(), strings.TrimSpace(string(body)))
	}
	return nil
}

func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}
