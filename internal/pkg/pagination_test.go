package pkg

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/myproject/internal/domain"
	"gorm.io/gorm"
	dbtest "gorm.io/gorm/utils/tests"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(queryParams url.Values) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+queryParams.Encode(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dbtest.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

// booksSQL renders the SELECT statement produced by scopes without executing it.
func booksSQL(t *testing.T, scopes ...func(*gorm.DB) *gorm.DB) string {
	t.Helper()
	db := newTestDB(t)
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var books []domain.Book
		return tx.Model(&domain.Book{}).Scopes(scopes...).Find(&books)
	})
}

func TestParsePageRequest_Defaults(t *testing.T) {
	c := newTestContext(url.Values{})
	pr := ParsePageRequest(c)

	if pr.Page != 1 {
		t.Errorf("expected Page=1, got %d", pr.Page)
	}
	if pr.PageSize != 20 {
		t.Errorf("expected PageSize=20, got %d", pr.PageSize)
	}
	if pr.Sort != "" {
		t.Errorf("expected empty Sort so repositories pick their own order, got %s", pr.Sort)
	}
	if pr.Search != "" {
		t.Errorf("expected empty Search, got %q", pr.Search)
	}
	if len(pr.Filter) != 0 {
		t.Errorf("expected empty Filter, got %v", pr.Filter)
	}
}

func TestParsePageRequest_CustomValues(t *testing.T) {
	c := newTestContext(url.Values{
		"page":                {"3"},
		"page_size":           {"50"},
		"sort":                {"title:asc"},
		"q":                   {"  gorm  "},
		"author":              {"John Doe"},
		"title__like":         {"basics"},
		"published_date__gte": {"2023-01-01"},
	})
	pr := ParsePageRequest(c)

	if pr.Page != 3 {
		t.Errorf("expected Page=3, got %d", pr.Page)
	}
	if pr.PageSize != 50 {
		t.Errorf("expected PageSize=50, got %d", pr.PageSize)
	}
	if pr.Sort != "title:asc" {
		t.Errorf("expected Sort=title:asc, got %s", pr.Sort)
	}
	if pr.Search != "gorm" {
		t.Errorf("expected Search=gorm, got %q", pr.Search)
	}
	if _, ok := pr.Filter["q"]; ok {
		t.Error("q must not be treated as a filter")
	}
	if pr.Filter["author"] != "John Doe" {
		t.Errorf("expected Filter[author]=John Doe, got %s", pr.Filter["author"])
	}
	if pr.Filter["title__like"] != "basics" {
		t.Errorf("expected Filter[title__like]=basics, got %s", pr.Filter["title__like"])
	}
	if pr.Filter["published_date__gte"] != "2023-01-01" {
		t.Errorf("expected Filter[published_date__gte]=2023-01-01, got %s", pr.Filter["published_date__gte"])
	}
}

func TestParsePageRequest_Clamping(t *testing.T) {
	tests := []struct {
		name         string
		query        url.Values
		wantPage     int
		wantPageSize int
	}{
		{"page below minimum", url.Values{"page": {"0"}}, 1, 20},
		{"negative page", url.Values{"page": {"-5"}}, 1, 20},
		{"page_size below minimum", url.Values{"page_size": {"0"}}, 1, 20},
		{"negative page_size", url.Values{"page_size": {"-5"}}, 1, 20},
		{"page_size above maximum", url.Values{"page_size": {"200"}}, 1, 100},
		{"invalid page_size defaults", url.Values{"page_size": {"abc"}}, 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := ParsePageRequest(newTestContext(tt.query))
			if pr.Page != tt.wantPage {
				t.Errorf("Page = %d; want %d", pr.Page, tt.wantPage)
			}
			if pr.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d; want %d", pr.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestParsePageRequest_EmptyFilterValuesIgnored(t *testing.T) {
	c := newTestContext(url.Values{
		"author": {""},
		"title":  {"Go"},
	})
	pr := ParsePageRequest(c)

	if _, ok := pr.Filter["author"]; ok {
		t.Error("expected empty filter value to be ignored")
	}
	if pr.Filter["title"] != "Go" {
		t.Errorf("expected Filter[title]=Go, got %q", pr.Filter["title"])
	}
}

func TestValidFieldName(t *testing.T) {
	valid := []string{"id", "name", "created_at", "user_name", "_private"}
	invalid := []string{"", "1field", "name;DROP", "field name", "a.b", "a-b"}

	for _, f := range valid {
		if !validFieldName.MatchString(f) {
			t.Errorf("expected %q to be valid", f)
		}
	}
	for _, f := range invalid {
		if validFieldName.MatchString(f) {
			t.Errorf("expected %q to be invalid", f)
		}
	}
}

// --------------- Sort scope ---------------

func TestSort(t *testing.T) {
	tests := []struct {
		name      string
		sort      string
		allowed   []string
		wantOrder string
	}{
		{"valid field asc", "title:asc", []string{"title", "author"}, "ORDER BY title asc"},
		{"valid field desc upper", "author:DESC", []string{"title", "author"}, "ORDER BY author desc"},
		{"field not in allowed list", "price:asc", []string{"title"}, "ORDER BY id desc"},
		{"malformed no colon", "title", []string{"title"}, "ORDER BY id desc"},
		{"invalid direction", "title:up", []string{"title"}, "ORDER BY id desc"},
		{"sql injection in field", "title;DROP TABLE books--:asc", []string{"title"}, "ORDER BY id desc"},
		{"empty field", ":asc", []string{"title"}, "ORDER BY id desc"},
		{"no sort requested", "", []string{"title"}, "ORDER BY id desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := booksSQL(t, Sort(domain.PageRequest{Sort: tt.sort}, tt.allowed))
			if !strings.Contains(sql, tt.wantOrder) {
				t.Errorf("SQL %q does not contain %q", sql, tt.wantOrder)
			}
		})
	}
}

// --------------- Filter scope ---------------

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   map[string]string
		allowed  []string
		wantSQL  string
		wantNone bool
	}{
		{"exact match", map[string]string{"author": "Jane"}, []string{"author"}, "author = ", false},
		{"like match", map[string]string{"title__like": "go"}, []string{"title"}, "title LIKE ", false},
		{"gte", map[string]string{"published_date__gte": "2023-01-01"}, []string{"published_date"}, "published_date >= ", false},
		{"gt", map[string]string{"price__gt": "10"}, []string{"price"}, "price > ", false},
		{"lte", map[string]string{"published_date__lte": "2023-12-31"}, []string{"published_date"}, "published_date <= ", false},
		{"lt", map[string]string{"price__lt": "10"}, []string{"price"}, "price < ", false},
		{"field not in allowed", map[string]string{"price": "1"}, []string{"title"}, "", true},
		{"range field not in allowed", map[string]string{"price__gte": "1"}, []string{"title"}, "", true},
		{"sql injection in key", map[string]string{"title;DROP TABLE--": "val"}, []string{"title"}, "", true},
		{"sql injection with spaces", map[string]string{"title OR 1=1": "val"}, []string{"title"}, "", true},
		{"empty filter map", map[string]string{}, []string{"title"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := booksSQL(t, Filter(domain.PageRequest{Filter: tt.filter}, tt.allowed))
			if tt.wantNone {
				if strings.Contains(sql, "WHERE") {
					t.Errorf("expected no WHERE clause, got %q", sql)
				}
				return
			}
			if !strings.Contains(sql, tt.wantSQL) {
				t.Errorf("SQL %q does not contain %q", sql, tt.wantSQL)
			}
		})
	}
}

func TestFilterValue(t *testing.T) {
	if v, ok := filterValue("2023-01-31").(time.Time); !ok || !v.Equal(time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date value = %#v", filterValue("2023-01-31"))
	}
	if v, ok := filterValue("2023-01-31T10:00:00+02:00").(time.Time); !ok || v.Location() != time.UTC || v.Hour() != 8 {
		t.Errorf("RFC 3339 value = %#v", filterValue("2023-01-31T10:00:00+02:00"))
	}
	if v, ok := filterValue("true").(bool); !ok || !v {
		t.Errorf("bool value = %#v", filterValue("true"))
	}
	if v, ok := filterValue("19.99").(string); !ok || v != "19.99" {
		t.Errorf("plain value = %#v", filterValue("19.99"))
	}
}

// --------------- Search scope ---------------

func TestSearch(t *testing.T) {
	t.Run("ors every field", func(t *testing.T) {
		sql := booksSQL(t, Search(domain.PageRequest{Search: "doe"}, []string{"title", "author"}))
		if !strings.Contains(sql, "(title LIKE ") || !strings.Contains(sql, " OR author LIKE ") {
			t.Errorf("unexpected search SQL: %q", sql)
		}
		if !strings.Contains(sql, "%doe%") {
			t.Errorf("expected wrapped search term in %q", sql)
		}
	})

	t.Run("blank term is a no-op", func(t *testing.T) {
		sql := booksSQL(t, Search(domain.PageRequest{Search: "   "}, []string{"title"}))
		if strings.Contains(sql, "WHERE") {
			t.Errorf("expected no WHERE clause, got %q", sql)
		}
	})

	t.Run("no fields is a no-op", func(t *testing.T) {
		sql := booksSQL(t, Search(domain.PageRequest{Search: "doe"}, nil))
		if strings.Contains(sql, "WHERE") {
			t.Errorf("expected no WHERE clause, got %q", sql)
		}
	})
}
