package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fogsched/logger"
	"fogsched/observability"
)

// Recovery recovers from handler panics, logs the stack and sends a 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", map[string]interface{}{
					"error":     fmt.Sprintf("%v", err),
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": c.ClientIP(),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequestID injects a unique X-Request-Id header into every request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// Operations tracks every request as an observed operation: a span over the
// handler plus the request start and end instruments. The operation context
// rides the request context so handlers can stamp the run ID onto it.
// Requires RequestID to run first.
func Operations(service string, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}
		oc := observability.NewOperationContext(
			service, c.Request.Method+" "+name, c.GetString("request_id"), "", metrics)
		ctx, span := oc.StartSpanForOperation(c.Request.Context(), observability.SpanHTTPRequest)
		c.Request = c.Request.WithContext(observability.WithOperationContext(ctx, oc))

		c.Next()

		status := "ok"
		if c.Writer.Status() >= 400 {
			status = "error"
		}
		var cause error
		if len(c.Errors) > 0 {
			cause = c.Errors.Last()
		}
		oc.EndOperation(c.Request.Context(), span, status, cause)
	}
}

// RequestLogger logs every request with method, path, status and latency.
// Health probes are skipped to keep the log readable.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        path,
			"status":      status,
			"duration_ms": latency.Milliseconds(),
			"client":      c.ClientIP(),
		}
		if id := c.GetString("request_id"); id != "" {
			fields["request_id"] = id
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields)
		case status >= 400:
			log.Warn("request rejected", fields)
		default:
			log.Info("request served", fields)
		}
	}
}
