package practice

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	tmpl := template.Must(template.New("").Parse(`{{define "practice/home.html"}}<h1>home</h1>{{end}}`))
	r.SetHTMLTemplate(tmpl)

	NewModule(NewPracticeHandler()).RegisterRoutes(r.Group("/api/v1"), r.Group("/"))
	return r
}

func TestProfile(t *testing.T) {
	r := setupTestRouter()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"ascii", "/profile/alice", "profile age of alice"},
		{"digits and dots", "/profile/bob.99", "profile age of bob.99"},
		{"percent escaped", "/profile/j%C3%BCrgen", "profile age of jürgen"},
		{"literal percent", "/profile/100%25", "profile age of 100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			if got := w.Body.String(); got != tt.want {
				t.Errorf("expected body %q, got %q", tt.want, got)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("expected text/plain content type, got %q", ct)
			}
		})
	}
}

func TestHome(t *testing.T) {
	r := setupTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<h1>home</h1>") {
		t.Errorf("expected home template, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
}

func TestNewModule_NilHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil handler")
		}
	}()
	NewModule(nil)
}
