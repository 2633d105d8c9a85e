package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/myproject/internal/domain"
)

// Toast types understood by the layout's toast listener.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// ParseID extracts a positive integer id from the named URL parameter.
func ParseID(c *gin.Context, param string) (uint, error) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("invalid %s: %q", param, raw), nil)
	}
	return uint(id), nil
}

// ShowToast sets the HX-Trigger header that raises a showToast event in the
// browser.
func ShowToast(c *gin.Context, message, toastType string) {
	trigger, _ := json.Marshal(map[string]any{
		"showToast": map[string]string{
			"message": message,
			"type":    toastType,
		},
	})
	c.Header("HX-Trigger", string(trigger))
}

// SafeMessage returns err's message when its code is public and fallback
// otherwise.
func SafeMessage(err error, fallback string) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Code.Public() {
		return appErr.Message
	}
	return fallback
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
