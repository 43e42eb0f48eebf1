package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health returns service health and uptime.
func (s *Server) Health(c *gin.Context) {
	uptime := time.Since(s.startTime)
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    uptime.String(),
	})
}

// Root is a plain-text liveness endpoint.
func (s *Server) Root(c *gin.Context) {
	c.String(http.StatusOK, "lingo-relay is running")
}
