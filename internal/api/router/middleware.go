package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/api/handler"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// Headers carrying the acting operator
const (
	HeaderActorName        = "X-Actor-Name"
	HeaderActorID          = "X-Actor-Id"
	HeaderActorPermissions = "X-Actor-Permissions"
)

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		// Log errors if any
		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				logger.Error("Request error",
					slog.String("error", e.Error()),
					slog.Uint64("type", uint64(e.Type)),
				)
			}
		}
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Actor-Name, X-Actor-Id, X-Actor-Permissions")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ActorMiddleware resolves the acting operator from request headers.
// Permissions are a comma separated list; unknown names are ignored.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := domain.Actor{
			ID:       strings.TrimSpace(c.GetHeader(HeaderActorID)),
			FullName: strings.TrimSpace(c.GetHeader(HeaderActorName)),
		}
		for _, p := range strings.Split(c.GetHeader(HeaderActorPermissions), ",") {
			switch perm := domain.Permission(strings.ToLower(strings.TrimSpace(p))); perm {
			case domain.PermissionAdmin, domain.PermissionInvoicing, domain.PermissionInventory:
				actor.Permissions = append(actor.Permissions, perm)
			}
		}
		c.Set(handler.ActorKey, actor)
		c.Next()
	}
}
