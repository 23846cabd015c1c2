package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthInfo is the static configuration surface reported by the liveness
// endpoint.
type HealthInfo struct {
	RemoteEngine string
	PageCeiling  int
	RasterDPI    int
}

type HealthHandler struct {
	info HealthInfo
}

func NewHealthHandler(info HealthInfo) *HealthHandler {
	return &HealthHandler{info: info}
}

// Check reports process readiness and key configuration. No side effects.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                 "ok",
		"remoteEngineConfigured": h.info.RemoteEngine != "",
		"remoteEngine":           h.info.RemoteEngine,
		"pageCeiling":            h.info.PageCeiling,
		"rasterDpi":              h.info.RasterDPI,
	})
}
