package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "RequestID"

// upstreamID bounds what a proxy may hand us; anything else is replaced.
var upstreamID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestIDConfig controls whether an incoming X-Request-ID is kept.
type RequestIDConfig struct {
	// TrustUpstream keeps a well-formed id set by a reverse proxy.
	TrustUpstream bool
}

// RequestID tags every request with a fresh UUID.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig tags every request with an id, echoes it in the
// response header and attaches it to the request context so every slog call
// made while serving the request carries request_id.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !cfg.TrustUpstream || !upstreamID.MatchString(id) {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(
			logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id)),
		)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "" outside it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
