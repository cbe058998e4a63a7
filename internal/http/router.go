package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/complaints", handler.listComplaints)
		protected.GET("/complaints/feed", handler.feed)
		protected.GET("/complaints/:id", handler.getComplaint)
		protected.POST("/complaints", handler.createComplaint)
		protected.POST("/complaints/:id/upvote", handler.toggleUpvote)
		protected.POST("/complaints/:id/report", handler.reportFake)
		protected.DELETE("/complaints/:id", handler.deleteComplaint)

		protected.POST("/complaints/:id/assign", handler.assignComplaint)
		protected.POST("/complaints/:id/resolution", handler.submitResolution)
		protected.GET("/complaints/:id/resolution", handler.listResolutions)
		protected.POST("/complaints/:id/resolution/respond", handler.respondResolution)
	}

	return router
}
