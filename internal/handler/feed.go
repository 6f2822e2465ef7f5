package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/link-review/internal/events"
)

// FeedHandler streams audit events to analyst sessions.
type FeedHandler struct {
	broker sse.Broker
	log    infralogger.Logger
}

// NewFeedHandler creates a FeedHandler. A nil broker disables the feed.
func NewFeedHandler(broker sse.Broker, log infralogger.Logger) *FeedHandler {
	return &FeedHandler{broker: broker, log: log}
}

// Stream handles GET /events, optionally filtered by ?record_id=.
func (h *FeedHandler) Stream(c *gin.Context) {
	if h.broker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live feed disabled"})
		return
	}
	filter, err := events.RecordFilter(c.Query("record_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sse.Handler(h.broker, h.log, filter)(c)
}
