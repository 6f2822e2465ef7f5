package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
)

const eventTypeConnected = "connected"

// Handler streams broker events to the client until it disconnects.
func Handler(b Broker, log infralogger.Logger, filter EventFilter) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, cancel, err := b.Subscribe(c.Request.Context(), filter)
		if err != nil {
			log.Warn("SSE subscription rejected", infralogger.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many live feed connections"})
			return
		}
		defer cancel()

		// Streams outlive the server write timeout.
		_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

		h := c.Writer.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		if err := write(c.Writer, Event{
			Type: eventTypeConnected,
			Data: gin.H{"timestamp": time.Now().UTC().Format(time.RFC3339)},
		}); err != nil {
			return
		}

		ticker := time.NewTicker(b.HeartbeatInterval())
		defer ticker.Stop()

		for {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				if err := write(c.Writer, e); err != nil {
					log.Debug("SSE write failed", infralogger.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprintf(c.Writer, ": heartbeat\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}

// write encodes e in SSE framing and flushes.
func write(w gin.ResponseWriter, e Event) error {
	if err := Encode(w, e); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// Encode writes e in SSE wire format.
func Encode(w io.Writer, e Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshal sse data: %w", err)
	}
	if e.Type != "" {
		if _, err = fmt.Fprintf(w, "event: %s\n", e.Type); err != nil {
			return err
		}
	}
	if e.ID != "" {
		if _, err = fmt.Fprintf(w, "id: %s\n", e.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
