// Package api assembles the link-review HTTP server.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	infracontext "github.com/jonesrussell/north-cloud/link-review/infrastructure/context"
	infragin "github.com/jonesrussell/north-cloud/link-review/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/link-review/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/link-review/internal/config"
	"github.com/jonesrussell/north-cloud/link-review/internal/handler"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

const metricsNamespace = "link_review"

// Service is the review surface plus the source reachability check
// reported by /health.
type Service interface {
	handler.ReviewService
	CheckSource(ctx context.Context) error
}

// Deps are the collaborators the server routes to. StreamCheck is nil when
// the Redis event stream is disabled.
type Deps struct {
	Service     Service
	Broker      sse.Broker
	StreamCheck func() error
	Telemetry   *telemetry.Provider
	Logger      infralogger.Logger
}

// NewServer builds the HTTP server.
func NewServer(cfg *config.Config, d Deps) *infragin.Server {
	b := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(d.Logger).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithTimeouts(cfg.Service.ReadTimeout, cfg.Service.WriteTimeout, cfg.Service.IdleTimeout).
		WithMiddleware(metrics.NewHTTP(d.Telemetry.Registerer(), metricsNamespace).Middleware()).
		WithHealthCheck("source", infragin.PingChecker("record source", infragin.HealthStatusDegraded, func() error {
			ctx, cancel := infracontext.WithPingTimeout(context.Background())
			defer cancel()
			return d.Service.CheckSource(ctx)
		})).
		WithRoutes(func(router *gin.Engine) {
			setupRoutes(router, cfg.Auth.JWTSecret, d)
		})
	if d.StreamCheck != nil {
		b.WithHealthCheck("event_stream", infragin.PingChecker("event stream", infragin.HealthStatusDegraded, d.StreamCheck))
	}
	return b.Build()
}
