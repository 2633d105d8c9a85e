package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

const adminModelKey = "AdminModel"

// SetAdminModel records which admin model the request works on, for the
// access log.
func SetAdminModel(c *gin.Context, name string) {
	c.Set(adminModelKey, name)
}

// Logger writes one access log line per request: info for success and
// redirects, warn for client errors, error for server errors. Lines carry
// staff_id when a staff account made the request and admin_model for admin
// routes. request_id comes from the context set up by RequestID.
func Logger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("route", routeOf(c)),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", max(c.Writer.Size(), 0)),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		attrs = append(attrs, actorAttrs(c)...)
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			attrs = append(attrs, slog.String("errors", errs.String()))
		}

		log.LogAttrs(c.Request.Context(), levelFor(status), "request", attrs...)
	}
}

// actorAttrs names who made the request and which admin model it touched.
func actorAttrs(c *gin.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := GetStaffID(c); id != 0 {
		attrs = append(attrs, slog.Uint64("staff_id", uint64(id)))
	}
	if model := c.GetString(adminModelKey); model != "" {
		attrs = append(attrs, slog.String("admin_model", model))
	}
	return attrs
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
