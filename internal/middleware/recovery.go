package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in a later handler into a 500. Pages get the error
// page (the admin variant under /admin) and API clients get the JSON
// envelope. The log line names the route, the staff account and the admin
// model involved.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			attrs := []slog.Attr{
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("route", routeOf(c)),
				slog.String("path", c.Request.URL.Path),
			}
			attrs = append(attrs, actorAttrs(c)...)
			attrs = append(attrs, slog.String("stack", string(debug.Stack())))
			log.LogAttrs(c.Request.Context(), slog.LevelError, "panic recovered", attrs...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			AbortWithError(c, http.StatusInternalServerError, "internal server error")
		}()
		c.Next()
	}
}
