package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/handler"
	"github.com/sudzikcoin/PingPoint-sub001/internal/middleware"
	"github.com/sudzikcoin/PingPoint-sub001/internal/ratelimit"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Ping     *handler.PingHandler
	Stop     *handler.StopHandler
	Tracking *handler.TrackingHandler
	Link     *handler.LinkHandler

	PublicLimiter *ratelimit.FixedWindow
	Metrics       middleware.GuardMetrics
}

// SetupRouter 设置路由
func SetupRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+handler.DriverTokenHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Tracking ingestion core is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 司机上报接口
		driver := api.Group("/driver")
		{
			driver.POST("/pings", h.Ping.Submit)
			driver.PATCH("/stops/:stopId", h.Stop.Update)
		}

		// 公开跟踪接口
		api.GET("/track/:token",
			middleware.PublicReadGuard(h.PublicLimiter, h.Metrics),
			h.Tracking.Get)

		// 链接签发接口
		api.POST("/loads/:loadId/links", h.Link.Issue)
	}

	return r
}
