package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the body of every failed request.
type Err struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`

	cause error
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.Message,
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.cause),
		)
	} else if e.cause != nil {
		zap.L().Debug(e.Message,
			zap.String("request_id", requestid.Get(ctx)),
			zap.Error(e.cause),
		)
	}

	ctx.AbortWithStatusJSON(e.StatusCode, e)
}

func newErr(status int, message string, cause error) *Err {
	return &Err{
		StatusCode: status,
		Message:    message,
		Error:      message,
		cause:      cause,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err.Error(), err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err.Error(), err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err.Error(), err)
}

func ErrNotFound(resource, key, value string) *Err {
	if key == "" || value == "" {
		return newErr(http.StatusNotFound, fmt.Sprintf("%s not found", resource), nil)
	}

	return newErr(http.StatusNotFound, fmt.Sprintf("%s with %s %s was not found", resource, key, value), nil)
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err.Error(), err)
}

// ErrInternalServerError hides the cause from the client and logs it instead.
func ErrInternalServerError(err error) *Err {
	return newErr(http.StatusInternalServerError, "internal server error", err)
}
