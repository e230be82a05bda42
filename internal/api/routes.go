// Package api is the HTTP surface: a gin router exposing the calculation
// pipeline and the report version store.
package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finhelm/taxengine/internal/pipeline"
	"github.com/finhelm/taxengine/internal/report"
)

// APIHandler bundles the collaborators behind the HTTP endpoints.
type APIHandler struct {
	pipeline *pipeline.Pipeline
	store    report.Store
}

// SetupRouter wires all routes. store may be nil, in which case the report
// endpoints respond 503.
func SetupRouter(p *pipeline.Pipeline, store report.Store) *gin.Engine {
	r := gin.Default()

	// CORS origins come from ALLOWED_ORIGINS (comma-separated); empty means *.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Tenant-ID, X-User-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	handler := &APIHandler{pipeline: p, store: store}

	api := r.Group("/api/v1")
	api.Use(AuthMiddleware())
	{
		api.GET("/health", handler.handleHealth)
		api.POST("/calculate", handler.handleCalculate)

		api.POST("/reports", handler.handleCreateReport)
		api.PUT("/reports/:id", handler.handleUpdateReport)
		api.GET("/reports/:id/versions", handler.handleVersionHistory)
		api.GET("/reports/:id/versions/:num", handler.handleGetVersion)
		api.GET("/reports/:id/audit", handler.handleAuditTrail)
		api.GET("/reports/:id/verify", handler.handleVerify)
		api.GET("/reports/:id/diff", handler.handleDiff)
	}

	return r
}
