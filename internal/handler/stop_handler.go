package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/service"
	"github.com/sudzikcoin/PingPoint-sub001/pkg/response"
)

// StopHandler handles manual stop updates by drivers
type StopHandler struct {
	stops *service.StopService
}

// NewStopHandler creates a new stop handler
func NewStopHandler(stops *service.StopService) *StopHandler {
	return &StopHandler{stops: stops}
}

// Update handles PATCH /api/v1/driver/stops/:stopId
func (h *StopHandler) Update(c *gin.Context) {
	tok := c.GetHeader(DriverTokenHeader)
	if tok == "" {
		response.Unauthorized(c, "Missing driver token")
		return
	}

	var req models.ManualStopUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	stop, err := h.stops.ManualUpdate(c.Request.Context(), tok, c.Param("stopId"), &req, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, stop)
}
