package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hazemkhaled/text-extractor/api/handlers"
	"github.com/hazemkhaled/text-extractor/api/middleware"
)

// SetupRoutes wires the API surface. The health endpoint stays outside the
// shared-secret guard so load balancers can probe it.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, apiSecret string) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")

	v1.GET("/health", h.Health.Check)

	jobs := v1.Group("")
	jobs.Use(middleware.SharedSecret(apiSecret))
	{
		jobs.POST("/extract", h.Extract.Extract)
		jobs.POST("/extract/batch", h.Extract.ExtractBatch)
	}
}
