// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"activitymonitor/api/ingest"
	"activitymonitor/api/models"

	"github.com/gin-gonic/gin"
)

type TrackHandlers struct {
	Processor *ingest.Processor
}

func NewTrackHandlers(p *ingest.Processor) *TrackHandlers {
	return &TrackHandlers{Processor: p}
}

// TrackEvents ingests a batch of activity events. Malformed requests get a
// 400; once the batch is readable, processing always completes and the
// outcome (including total failure) is reported in the response body.
func (h *TrackHandlers) TrackEvents(c *gin.Context) {
	var req models.BatchEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error binding incoming batch JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second) // Set a timeout for DB operations
	defer cancel()

	response := h.Processor.Process(ctx, req.Payload.Events)
	if !response.Success {
		log.Printf("Batch processing reported failures: %s", response.Message)
	}

	c.JSON(http.StatusOK, response)
}
