package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dqdash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest  = "ERR_INVALID_REQUEST"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeConflict        = "ERR_CONFLICT"
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
	ErrCodeInternalError   = "ERR_INTERNAL_ERROR"

	// 认证错误码
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
)

// APIError 统一的 API 错误响应结构。Detail 与 Message 相同，供沿用 detail 字段的前端读取。
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Details any    `json:"details,omitempty"`
}

// FieldViolation 描述一个未通过绑定校验的字段
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	ErrorResponseWithDetails(c, status, code, message, nil)
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, APIError{
		Code:    code,
		Message: message,
		Detail:  message,
		Details: details,
	})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// ValidationFailed 422 参数校验失败
func ValidationFailed(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnprocessableEntity, ErrCodeValidation, message)
}

// respondError maps a service error onto a status code and error code.
// Unknown errors are logged and reported as 500 without their text.
func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		ErrorResponse(c, status, code, "internal server error")
		return
	}
	ErrorResponse(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials
	case errors.Is(err, service.ErrUserDisabled):
		return http.StatusForbidden, ErrCodeUserDisabled
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, ErrCodeConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity, ErrCodeValidation
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// bindError reports a ShouldBindJSON failure: undecodable bodies are 400,
// bodies of the wrong shape are 422 with per-field details when available.
func bindError(c *gin.Context, err error) {
	var syntaxErr *json.SyntaxError
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &syntaxErr) {
		InvalidPayload(c)
		return
	}

	var sliceErrs binding.SliceValidationError
	if errors.As(err, &sliceErrs) {
		// gin 只收集失败的元素，下标与请求中的位置不对应，因此不返回下标
		violations := make([]FieldViolation, 0, len(sliceErrs))
		for _, itemErr := range sliceErrs {
			violations = append(violations, fieldViolations(itemErr)...)
		}
		ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, ErrCodeValidation, "invalid request payload", violations)
		return
	}

	if violations := fieldViolations(err); len(violations) > 0 {
		ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, ErrCodeValidation, "invalid request payload", violations)
		return
	}
	ValidationFailed(c, err.Error())
}

func fieldViolations(err error) []FieldViolation {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldViolation{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
