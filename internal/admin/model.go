package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/schema"

	"github.com/simp-lee/myproject/internal/domain"
	"github.com/simp-lee/myproject/internal/pkg"
)

type columnKind int

const (
	kindOther columnKind = iota
	kindDate
	kindTime
	kindBool
)

// column is a persisted, non-relation field of a registered model.
type column struct {
	name     string // database column
	jsonName string
	label    string
	kind     columnKind
	field    *schema.Field
}

// readOnly are JSON keys clients may not set.
var readOnly = []string{"id", "created_at", "updated_at"}

// titleColumns are tried in order to name a record, falling back to its id.
var titleColumns = []string{"title", "name", "customer_name", "product"}

// entry is the type-erased view of a registration used by the handlers.
type entry interface {
	info() ModelInfo
	headers() []column
	filterColumns() []column
	list(ctx context.Context, req domain.PageRequest) (any, error)
	rows(ctx context.Context, req domain.PageRequest) (*RowPage, error)
	get(ctx context.Context, id uint) (any, error)
	detail(ctx context.Context, id uint) (*Detail, error)
	create(c *gin.Context) (any, bool)
	update(c *gin.Context, id uint) (any, bool)
	remove(ctx context.Context, id uint) error
}

// modelAdmin is the registration of one model type.
type modelAdmin[T any] struct {
	repo    domain.Repository[T]
	schema  *schema.Schema
	opts    Options
	cols    map[string]column
	all     []column
	display []column
	filters []column
}

func newModelAdmin[T any](repo domain.Repository[T], sch *schema.Schema, opts Options) (*modelAdmin[T], error) {
	m := &modelAdmin[T]{repo: repo, schema: sch, cols: make(map[string]column)}

	for _, dbName := range sch.DBNames {
		f := sch.FieldsByDBName[dbName]
		col := column{
			name:     dbName,
			jsonName: jsonName(f),
			label:    humanize(dbName),
			kind:     kindOf(f),
			field:    f,
		}
		m.cols[dbName] = col
		m.all = append(m.all, col)
	}

	if opts.Verbose == "" {
		opts.Verbose = sch.Name
	}
	if opts.VerbosePlural == "" {
		opts.VerbosePlural = opts.Verbose + "s"
	}
	if len(opts.ListDisplay) == 0 {
		opts.ListDisplay = slices.Clone(sch.DBNames)
	}

	for _, group := range []struct {
		what  string
		names []string
	}{
		{"list_display", opts.ListDisplay},
		{"search_fields", opts.SearchFields},
		{"list_filter", opts.ListFilter},
	} {
		for _, name := range group.names {
			if _, ok := m.cols[name]; !ok {
				return nil, fmt.Errorf("%s: %s has no column %q", group.what, sch.Name, name)
			}
		}
	}

	for _, name := range opts.ListDisplay {
		m.display = append(m.display, m.cols[name])
	}
	for _, name := range opts.ListFilter {
		m.filters = append(m.filters, m.cols[name])
	}
	m.opts = opts
	return m, nil
}

func (m *modelAdmin[T]) info() ModelInfo {
	return ModelInfo{
		Name:          m.opts.Name,
		Verbose:       m.opts.Verbose,
		VerbosePlural: m.opts.VerbosePlural,
		ListDisplay:   slices.Clone(m.opts.ListDisplay),
		SearchFields:  slices.Clone(m.opts.SearchFields),
		ListFilter:    slices.Clone(m.opts.ListFilter),
	}
}

func (m *modelAdmin[T]) headers() []column       { return m.display }
func (m *modelAdmin[T]) filterColumns() []column { return m.filters }

// sanitize drops request parts the registration does not allow.
func (m *modelAdmin[T]) sanitize(req domain.PageRequest) domain.PageRequest {
	if len(m.opts.SearchFields) == 0 {
		req.Search = ""
	}
	filter := make(map[string]string, len(req.Filter))
	for key, value := range req.Filter {
		field, suffix := key, ""
		if i := strings.Index(key, "__"); i > 0 {
			field, suffix = key[:i], key[i:]
		}
		if !slices.Contains(m.opts.ListFilter, field) {
			continue
		}
		if suffix != "" && (slices.Index(filterSuffixes, suffix) < 0 || !m.cols[field].isTemporal()) {
			continue
		}
		filter[key] = value
	}
	req.Filter = filter

	if field, _, ok := strings.Cut(req.Sort, ":"); ok && !slices.Contains(m.opts.sortable(), field) {
		req.Sort = ""
	}
	return req
}

func (m *modelAdmin[T]) list(ctx context.Context, req domain.PageRequest) (any, error) {
	return m.repo.List(ctx, m.sanitize(req))
}

// RowPage is a changelist page rendered as strings.
type RowPage struct {
	Rows       []Row
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
	// Pages are the page numbers shown around Page.
	Pages []int
}

// HasPrev reports whether a page exists before this one.
func (p *RowPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a page exists after this one.
func (p *RowPage) HasNext() bool { return p.Page < p.TotalPages }

// Row is one changelist line.
type Row struct {
	ID    uint
	Title string
	Cells []string
}

func (m *modelAdmin[T]) rows(ctx context.Context, req domain.PageRequest) (*RowPage, error) {
	page, err := m.repo.List(ctx, m.sanitize(req))
	if err != nil {
		return nil, err
	}

	out := &RowPage{
		Rows:       make([]Row, 0, len(page.Items)),
		Total:      page.TotalItems,
		Page:       page.CurrentPage,
		PageSize:   page.ItemsPerPage,
		TotalPages: page.TotalPages,
		Pages:      page.Pages,
	}
	for i := range page.Items {
		rv := reflect.ValueOf(&page.Items[i]).Elem()
		row := Row{ID: m.id(ctx, rv), Title: m.title(ctx, rv)}
		for _, col := range m.display {
			row.Cells = append(row.Cells, formatValue(ctx, col, rv))
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (m *modelAdmin[T]) get(ctx context.Context, id uint) (any, error) {
	return m.repo.GetByID(ctx, id)
}

// Detail is the read-only view of one record.
type Detail struct {
	ID     uint
	Title  string
	Fields []DetailField
}

// DetailField is one labelled value of a record.
type DetailField struct {
	Label string
	Value string
}

func (m *modelAdmin[T]) detail(ctx context.Context, id uint) (*Detail, error) {
	entity, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(entity).Elem()
	d := &Detail{ID: id, Title: m.title(ctx, rv)}
	for _, col := range m.all {
		d.Fields = append(d.Fields, DetailField{Label: col.label, Value: formatValue(ctx, col, rv)})
	}
	return d, nil
}

func (m *modelAdmin[T]) create(c *gin.Context) (any, bool) {
	var entity T
	if !m.decode(c, &entity) {
		return nil, false
	}
	if err := m.repo.Create(c.Request.Context(), &entity); err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	return m.reload(c, &entity)
}

func (m *modelAdmin[T]) update(c *gin.Context, id uint) (any, bool) {
	ctx := c.Request.Context()
	entity, err := m.repo.GetByID(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	if !m.decode(c, entity) {
		return nil, false
	}
	if err := m.repo.Update(ctx, entity); err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	return m.reload(c, entity)
}

func (m *modelAdmin[T]) reload(c *gin.Context, entity *T) (any, bool) {
	id := m.id(c.Request.Context(), reflect.ValueOf(entity).Elem())
	fresh, err := m.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return nil, false
	}
	return fresh, true
}

func (m *modelAdmin[T]) remove(ctx context.Context, id uint) error {
	return m.repo.Delete(ctx, id)
}

// decode merges the JSON body into entity and validates the result. Read-only
// keys are ignored, relations are cleared so only columns are written, and
// date columns accept YYYY-MM-DD. On failure the error response is written.
func (m *modelAdmin[T]) decode(c *gin.Context, entity *T) bool {
	var body map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil || body == nil {
		c.JSON(http.StatusBadRequest, pkg.Response{Code: http.StatusBadRequest, Message: "request body must be a JSON object"})
		return false
	}
	for _, key := range readOnly {
		delete(body, key)
	}

	fieldErrors := make(map[string]string)
	for _, col := range m.all {
		if !col.isTemporal() {
			continue
		}
		raw, ok := body[col.jsonName].(string)
		if !ok {
			continue
		}
		t, err := parseTemporal(raw)
		if err != nil {
			fieldErrors[col.jsonName] = "Must be a date in YYYY-MM-DD format"
			continue
		}
		body[col.jsonName] = t.Format(time.RFC3339Nano)
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, pkg.ValidationErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "validation error",
			Errors:  fieldErrors,
		})
		return false
	}

	buf, err := json.Marshal(body)
	if err == nil {
		err = json.Unmarshal(buf, entity)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.Response{Code: http.StatusBadRequest, Message: "invalid field value: " + jsonErrorField(err)})
		return false
	}

	ctx := c.Request.Context()
	rv := reflect.ValueOf(entity).Elem()
	for _, rel := range m.schema.Relationships.Relations {
		if rel.Field != nil && rel.Field.Schema == m.schema {
			rv.FieldByIndex(rel.Field.StructField.Index).SetZero()
		}
	}
	for _, col := range m.all {
		if col.kind != kindDate {
			continue
		}
		if v, _ := col.field.ValueOf(ctx, rv); v != nil {
			if t, ok := v.(time.Time); ok {
				_ = col.field.Set(ctx, rv, domain.Date(t))
			}
		}
	}

	return pkg.Validate(c, entity)
}

func (m *modelAdmin[T]) id(ctx context.Context, rv reflect.Value) uint {
	if m.schema.PrioritizedPrimaryField == nil {
		return 0
	}
	v, _ := m.schema.PrioritizedPrimaryField.ValueOf(ctx, rv)
	id, _ := v.(uint)
	return id
}

func (m *modelAdmin[T]) title(ctx context.Context, rv reflect.Value) string {
	for _, name := range titleColumns {
		col, ok := m.cols[name]
		if !ok {
			continue
		}
		if v, _ := col.field.ValueOf(ctx, rv); v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("%s #%d", m.opts.Verbose, m.id(ctx, rv))
}

func (c column) isTemporal() bool {
	return c.kind == kindDate || c.kind == kindTime
}

var timeType = reflect.TypeOf(time.Time{})

func kindOf(f *schema.Field) columnKind {
	t := f.FieldType
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch {
	case t == timeType && strings.EqualFold(string(f.DataType), "date"):
		return kindDate
	case t == timeType:
		return kindTime
	case t.Kind() == reflect.Bool:
		return kindBool
	}
	return kindOther
}

func jsonName(f *schema.Field) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// humanize turns a column name into a label: published_date becomes
// "Published date" and borrowed_by_id becomes "Borrowed by".
func humanize(name string) string {
	if name == "id" {
		return "ID"
	}
	name = strings.TrimSuffix(name, "_id")
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseTemporal(s string) (time.Time, error) {
	if t, err := domain.ParseDate(s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func jsonErrorField(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	return "body"
}

// formatValue renders a column of the struct rv for display.
func formatValue(ctx context.Context, col column, rv reflect.Value) string {
	v, _ := col.field.ValueOf(ctx, rv)
	return formatAny(col.kind, v)
}

func formatAny(kind columnKind, v any) string {
	if v == nil {
		return "-"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "-"
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return "-"
		}
		if kind == kindDate {
			return x.UTC().Format(domain.DateLayout)
		}
		return x.UTC().Format("2006-01-02 15:04")
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case fmt.Stringer:
		return x.String()
	case uint, uint8, uint16, uint32, uint64, int, int8, int16, int32, int64:
		return fmt.Sprint(x)
	case float32, float64:
		return strconv.FormatFloat(rv.Convert(reflect.TypeOf(float64(0))).Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
