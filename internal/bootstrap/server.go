package bootstrap

import (
	infragin "github.com/jonesrussell/north-cloud/link-review/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/api"
	"github.com/jonesrussell/north-cloud/link-review/internal/assistant"
	"github.com/jonesrussell/north-cloud/link-review/internal/config"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

// SetupAssistant returns the assistant client, or nil when it is disabled
// or misconfigured.
func SetupAssistant(cfg *config.Config, log infralogger.Logger) *assistant.Client {
	if !cfg.Assistant.Enabled {
		return nil
	}
	client, err := assistant.New(assistant.Config{
		APIKey:            cfg.Assistant.APIKey,
		Model:             cfg.Assistant.Model,
		BaseURL:           cfg.Assistant.BaseURL,
		MaxTokens:         cfg.Assistant.MaxTokens,
		MaxRetries:        cfg.Assistant.MaxRetries,
		Timeout:           cfg.Assistant.Timeout,
		RequestsPerMinute: cfg.Assistant.RequestsPerMinute,
	}, log)
	if err != nil {
		log.Warn("Assistant disabled", infralogger.Error(err))
		return nil
	}
	return client
}

// SetupHTTPServer creates and configures the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	svc api.Service,
	ev *Events,
	tp *telemetry.Provider,
	log infralogger.Logger,
) *infragin.Server {
	return api.NewServer(cfg, api.Deps{
		Service:     svc,
		Broker:      ev.Broker,
		StreamCheck: ev.StreamCheck(),
		Telemetry:   tp,
		Logger:      log,
	})
}
