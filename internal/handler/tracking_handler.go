package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/service"
)

// TrackingHandler serves the public tracking read
type TrackingHandler struct {
	tracking *service.TrackingService
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(tracking *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking}
}

// Get handles GET /api/v1/track/:token. The payload is the serialized
// snapshot straight from the service so cached reads stay byte-identical.
func (h *TrackingHandler) Get(c *gin.Context) {
	payload, err := h.tracking.GetSnapshot(c.Param("token"), time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Data(200, "application/json; charset=utf-8", payload)
}
