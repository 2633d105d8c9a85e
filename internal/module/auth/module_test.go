package auth

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestAuthModuleRegisterRoutes verifies that AuthModule registers the login
// API and the admin login pages.
func TestAuthModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	mod := NewModule(&AuthHandler{}, &AuthPageHandler{})
	mod.RegisterRoutes(r.Group("/api"), r.Group("/"))

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/login"},
		{http.MethodGet, "/admin/login"},
		{http.MethodPost, "/admin/login"},
		{http.MethodPost, "/admin/logout"},
	}

	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+":"+ri.Path] = true
	}
	for _, exp := range expected {
		if !registered[exp.method+":"+exp.path] {
			t.Errorf("expected route %s %s to be registered", exp.method, exp.path)
		}
	}
}

func TestAuthModule_NilPagesGroup(t *testing.T) {
	r := gin.New()
	NewModule(&AuthHandler{}, &AuthPageHandler{}).RegisterRoutes(r.Group("/api"), nil)

	if n := len(r.Routes()); n != 1 {
		t.Errorf("expected only the API route, got %d routes", n)
	}
}

func TestNewModule_NilHandlerPanics(t *testing.T) {
	for name, fn := range map[string]func(){
		"handler":     func() { NewModule(nil, &AuthPageHandler{}) },
		"pageHandler": func() { NewModule(&AuthHandler{}, nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for nil %s", name)
				}
			}()
			fn()
		})
	}
}
