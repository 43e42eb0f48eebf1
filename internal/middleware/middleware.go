// Package middleware provides HTTP middleware for the application.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	app_errors "lingo-relay/internal/errors"
	"lingo-relay/internal/response"
	"lingo-relay/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger creates a request logging middleware.
func Logger(config types.LogConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		method := c.Request.Method
		statusCode := c.Writer.Status()

		// Health probes only get logged on failure
		if path == "/health" || path == "/" {
			if statusCode >= 400 {
				logrus.Warnf("%s %s - %d - %v", method, path, statusCode, latency)
			}
			return
		}

		if statusCode >= 500 {
			logrus.Errorf("%s %s - %d - %v", method, path, statusCode, latency)
		} else if statusCode >= 400 {
			logrus.Warnf("%s %s - %d - %v", method, path, statusCode, latency)
		} else {
			logrus.Infof("%s %s - %d - %v", method, path, statusCode, latency)
		}
	}
}

// Recovery creates an error recovery middleware.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logrus.WithFields(logrus.Fields{
					"error":  fmt.Sprint(err),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Panic recovered")

				response.Error(c, app_errors.ErrInternalServer)
				c.Abort()
			}
		}()

		c.Next()
	}
}

// RateLimiter creates a global concurrency limiter for inbound requests.
func RateLimiter(config types.PerformanceConfig) gin.HandlerFunc {
	semaphore := make(chan struct{}, config.MaxConcurrentRequests)

	return func(c *gin.Context) {
		select {
		case semaphore <- struct{}{}:
			defer func() { <-semaphore }()
			c.Next()
		default:
			response.Error(c, app_errors.ErrServiceBusy)
			c.Abort()
		}
	}
}

// ErrorHandler creates a middleware that maps gin errors to API responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			if apiErr, ok := err.(*app_errors.APIError); ok {
				response.Error(c, apiErr)
				return
			}
			response.Error(c, app_errors.NewAPIError(app_errors.ErrInternalServer, http.StatusText(http.StatusInternalServerError)))
		}
	}
}
