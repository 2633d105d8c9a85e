package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

// asStaff marks the request as made by staff account id, as RequireStaff would.
func asStaff(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(staffContextKey, id)
		c.Next()
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusSeeOther, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			r := gin.New()
			r.Use(Logger(newTestLogger(&buf)))
			r.GET("/home", func(c *gin.Context) { c.Status(tt.status) })

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/home", nil))

			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("expected %s, got:\n%s", tt.level, buf.String())
			}
		})
	}
}

func TestLogger_AdminRequestNamesStaffAndModel(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(newTestLogger(&buf)))
	r.DELETE("/api/v1/admin/:model/:id", asStaff(42), func(c *gin.Context) {
		SetAdminModel(c, c.Param("model"))
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/orderitem/3", nil))

	out := buf.String()
	for _, field := range []string{
		"method=DELETE",
		"route=/api/v1/admin/:model/:id",
		"path=/api/v1/admin/orderitem/3",
		"status=200",
		"staff_id=42",
		"admin_model=orderitem",
		"bytes=",
		"latency=",
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected log to contain %q, got:\n%s", field, out)
		}
	}
}

func TestLogger_AnonymousRequestOmitsActor(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(newTestLogger(&buf)))
	r.GET("/posts/recent", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/recent", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	out := buf.String()
	if strings.Contains(out, "staff_id") || strings.Contains(out, "admin_model") {
		t.Errorf("anonymous requests must not log an actor, got:\n%s", out)
	}
	if !strings.Contains(out, "route=unmatched") {
		t.Errorf("expected unmatched route for 404, got:\n%s", out)
	}
}

func TestLogger_CarriesRequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&buf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithLevel(slog.LevelDebug),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	if err != nil {
		t.Fatalf("logger.New error: %v", err)
	}
	defer log.Close()

	r := gin.New()
	r.Use(RequestIDWithConfig(RequestIDConfig{TrustUpstream: true}), Logger(log.Logger))
	r.GET("/profile/:username", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
	req.Header.Set(RequestIDHeader, "edge-7f3a")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "edge-7f3a") {
		t.Errorf("expected request_id edge-7f3a, got:\n%s", buf.String())
	}
}
