package httpx

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/logx"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// ErrorBody is the JSON error envelope.
// swagger:model ErrorBody
type ErrorBody struct {
	Error  string            `json:"error" example:"Insufficient stock"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Fail writes err with the status its kind maps to. Unknown errors are
// logged and hidden behind a generic message.
func Fail(c *gin.Context, log *logx.Logger, err error) {
	status := apperr.Status(err)
	if !apperr.Public(err) {
		log.Error("request failed", "rid", c.GetString("rid"), "route", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, ErrorBody{Error: "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: err.Error()})
}

// Invalid writes a 400 for a binding failure, itemised per field when the
// validator produced the error.
func Invalid(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: "Invalid request", Fields: fields})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: "Invalid request body"})
}

// BindJSON binds the body into dst and writes the 400 itself on failure.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Invalid(c, err)
		return false
	}
	return true
}
