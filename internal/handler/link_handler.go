package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/service"
	"github.com/sudzikcoin/PingPoint-sub001/pkg/response"
)

// LinkHandler issues tracking and driver links. This surface is internal;
// edge authentication for it lives outside this service.
type LinkHandler struct {
	links *service.LinkService
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(links *service.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

// Issue handles POST /api/v1/loads/:loadId/links
func (h *LinkHandler) Issue(c *gin.Context) {
	var req models.IssueLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	link, err := h.links.Issue(c.Param("loadId"), req.Role)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// The token is surfaced exactly once, here.
	response.Success(c, gin.H{
		"token": link.Token,
		"role":  link.Role,
	})
}
