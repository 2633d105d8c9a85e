package pkg

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/myproject/internal/domain"
	"gorm.io/gorm"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
	defaultSort     = "id:desc"
)

// reservedParams lists query parameter names used for pagination, sorting and
// searching, not for filtering.
var reservedParams = map[string]bool{
	"page":      true,
	"page_size": true,
	"sort":      true,
	"q":         true,
}

// filterOperators maps a filter key suffix to its SQL comparison.
var filterOperators = map[string]string{
	"__gte": ">=",
	"__gt":  ">",
	"__lte": "<=",
	"__lt":  "<",
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts pagination, sorting, searching and filtering
// parameters from query params. Sort stays empty unless the client sent one,
// so a repository can apply its own default order.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	sort := strings.TrimSpace(c.Query("sort"))

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter[key] = values[0]
		}
	}

	return domain.PageRequest{
		Page:     page,
		PageSize: pageSize,
		Sort:     sort,
		Search:   strings.TrimSpace(c.Query("q")),
		Filter:   filter,
	}
}

// Sort returns a GORM scope that applies ORDER BY based on the page request.
// Only field names present in the allowed list are accepted; an empty or
// rejected sort falls back to id:desc. Field names are validated against a strict pattern to
// prevent SQL injection.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field, direction, ok := parseSort(req.Sort, allowed)
		if !ok {
			field, direction, _ = parseSort(defaultSort, []string{"id"})
		}
		return db.Order(field + " " + direction)
	}
}

func parseSort(sort string, allowed []string) (string, string, bool) {
	field, direction, found := strings.Cut(sort, ":")
	if !found {
		return "", "", false
	}
	field = strings.TrimSpace(field)
	direction = strings.TrimSpace(strings.ToLower(direction))

	if direction != "asc" && direction != "desc" {
		return "", "", false
	}
	if !validFieldName.MatchString(field) || !isAllowed(field, allowed) {
		return "", "", false
	}
	return field, direction, true
}

// Filter returns a GORM scope that applies WHERE conditions based on the page request filters.
// Only filter keys present in the allowed list are applied; others are silently ignored.
//
// Supported key forms:
//   - field         exact match; "true" and "false" match boolean columns
//   - field__like   LIKE '%value%'
//   - field__gte, field__gt, field__lte, field__lt  range comparison; values
//     shaped like YYYY-MM-DD or RFC 3339 are compared as timestamps
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			field, op := splitFilterKey(key)
			if !validFieldName.MatchString(field) || !isAllowed(field, allowed) {
				continue
			}
			switch op {
			case "":
				db = db.Where(field+" = ?", filterValue(value))
			case "__like":
				db = db.Where(field+" LIKE ?", "%"+value+"%")
			default:
				db = db.Where(field+" "+filterOperators[op]+" ?", filterValue(value))
			}
		}
		return db
	}
}

// Search returns a GORM scope that matches req.Search against every field with
// LIKE '%term%', combined with OR. An empty term or field list is a no-op.
func Search(req domain.PageRequest, fields []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term := strings.TrimSpace(req.Search)
		if term == "" {
			return db
		}

		conds := make([]string, 0, len(fields))
		args := make([]any, 0, len(fields))
		for _, f := range fields {
			if !validFieldName.MatchString(f) {
				continue
			}
			conds = append(conds, f+" LIKE ?")
			args = append(args, "%"+term+"%")
		}
		if len(conds) == 0 {
			return db
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

func splitFilterKey(key string) (string, string) {
	if field, ok := strings.CutSuffix(key, "__like"); ok {
		return field, "__like"
	}
	for suffix := range filterOperators {
		if field, ok := strings.CutSuffix(key, suffix); ok {
			return field, suffix
		}
	}
	return key, ""
}

func filterValue(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC()
	}
	if t, err := domain.ParseDate(v); err == nil {
		return t
	}
	return v
}

// isAllowed checks if a field name is in the allowed list.
func isAllowed(field string, allowed []string) bool {
	return slices.Contains(allowed, field)
}
