package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/service"
	"github.com/sudzikcoin/PingPoint-sub001/pkg/response"
)

// DriverTokenHeader carries the driver link token on submission requests
const DriverTokenHeader = "X-Driver-Token"

// PingHandler handles driver location report submissions
type PingHandler struct {
	ingest *service.IngestService
}

// NewPingHandler creates a new ping handler
func NewPingHandler(ingest *service.IngestService) *PingHandler {
	return &PingHandler{ingest: ingest}
}

// Submit handles POST /api/v1/driver/pings
func (h *PingHandler) Submit(c *gin.Context) {
	tok := c.GetHeader(DriverTokenHeader)
	if tok == "" {
		response.Unauthorized(c, "Missing driver token")
		return
	}

	var req models.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.ingest.Submit(c.Request.Context(), tok, &req, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// writeServiceError maps service errors onto the response envelope
func writeServiceError(c *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		response.Rejected(c, ve.Reason)
		return
	}
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, "Invalid token")
	case errors.Is(err, service.ErrRateLimited):
		response.TooManyRequests(c, "Too soon. Please retry later.")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "Not found")
	case errors.Is(err, service.ErrLinkExpired):
		response.Gone(c, "Tracking link expired")
	default:
		response.InternalError(c, err.Error())
	}
}
