package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/myproject/internal/domain"
)

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	write(c, http.StatusOK, data)
}

// Created sends a 201 JSON response with the newly created resource.
func Created(c *gin.Context, data any) {
	write(c, http.StatusCreated, data)
}

// List sends a 200 JSON response for paginated results, typically a
// *pagination.Pagination[T].
func List(c *gin.Context, result any) {
	write(c, http.StatusOK, result)
}

func write(c *gin.Context, status int, data any) {
	c.JSON(status, Response{
		Code:    status,
		Message: "success",
		Data:    data,
	})
}

// Error sends a JSON error response. A *domain.AppError is mapped to its HTTP
// status and message; anything else becomes a 500 with a generic message.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	var appErr *domain.AppError
	msg := "internal error"
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	c.JSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    nil,
	})
}

// ValidationError sends a 400 JSON response with per-field messages when err
// is a validator.ValidationErrors, or a plain bad request otherwise.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj, runs binding validation and,
// when obj implements domain.Validatable, its own Validate method.
// On failure it writes the error response and returns false:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return checkValidatable(c, obj)
}

// Validate runs binding validation on an already decoded obj, then its
// Validate method when present. It reports failures like BindAndValidate.
func Validate(c *gin.Context, obj any) bool {
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return checkValidatable(c, obj)
}

func checkValidatable(c *gin.Context, obj any) bool {
	if v, ok := obj.(domain.Validatable); ok {
		if err := v.Validate(); err != nil {
			Error(c, err)
			return false
		}
	}
	return true
}

func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Response{
			Code:    http.StatusBadRequest,
			Message: "bad request",
			Data:    nil,
		})
		return
	}

	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := jsonTags[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		fieldErrors[name] = FieldMessage(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors,
	})
}

// FieldMessage renders a validator failure as a sentence suitable for forms.
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "isbn":
		return "Must be a valid ISBN"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "datetime":
		if fe.Param() == domain.DateLayout {
			return "Must be a date in YYYY-MM-DD format"
		}
	}
	if fe.Param() != "" {
		return "Failed on " + fe.Tag() + "=" + fe.Param()
	}
	return "Failed on " + fe.Tag()
}

// buildJSONTagMap maps struct field names to their JSON names, descending into
// embedded structs. It returns nil when obj is not a struct.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	collectJSONTags(t, m)
	return m
}

func collectJSONTags(t reflect.Type, m map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectJSONTags(f.Type, m)
			continue
		}
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
