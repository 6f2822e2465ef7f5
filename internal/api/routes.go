package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/link-review/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/link-review/internal/handler"
)

func setupRoutes(router *gin.Engine, jwtSecret string, d Deps) {
	router.GET("/metrics", gin.WrapH(d.Telemetry.Handler()))

	links := handler.NewLinkHandler(d.Service)
	feed := handler.NewFeedHandler(d.Broker, d.Logger)

	v1 := infragin.ProtectedGroup(router, "/api/v1", jwtSecret)
	v1.Use(infragin.NoStoreMiddleware())

	v1.GET("/links", links.List)
	v1.GET("/links/:id", links.Get)
	v1.PATCH("/links/:id", links.Patch)
	v1.GET("/links/:id/history", links.History)
	v1.POST("/links/:id/history", links.AddNote)
	v1.POST("/links/:id/ask", links.Ask)

	// Envelope routes kept for the legacy review UI.
	v1.POST("/update", links.Update)
	v1.GET("/history", links.LegacyHistory)
	v1.POST("/history", links.LegacyAddNote)

	v1.GET("/events", feed.Stream)
}
