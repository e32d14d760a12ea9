// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired     ErrorCode = "2001"
	CodeTokenInvalid     ErrorCode = "2002"
	CodeTokenMissing     ErrorCode = "2003"
	CodePermissionDenied ErrorCode = "2004"

	// 资源错误 (3xxx)
	CodeImageNotFound   ErrorCode = "3001"
	CodeUserNotFound    ErrorCode = "3002"
	CodeCommentNotFound ErrorCode = "3003"

	// 生成管线错误 (4xxx)
	CodeInvalidPrompt        ErrorCode = "4001"
	CodeServiceMisconfigured ErrorCode = "4002"
	CodeInferenceExhausted   ErrorCode = "4003"
	CodeArtifactPersist      ErrorCode = "4004"
	CodeCatalogWrite         ErrorCode = "4005"

	// 外部服务错误 (5xxx)
	CodeDatabaseError  ErrorCode = "5001"
	CodeCacheError     ErrorCode = "5002"
	CodeStorageError   ErrorCode = "5003"
	CodeInferenceError ErrorCode = "5004"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Attempts   int       `json:"attempts,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// WithAttempts 记录推理尝试次数
func (e *AppError) WithAttempts(attempts int) *AppError {
	e.Attempts = attempts
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeInvalidPrompt:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden, CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound, CodeImageNotFound, CodeUserNotFound, CodeCommentNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrImageNotFound   = New(CodeImageNotFound, "image not found")
	ErrUserNotFound    = New(CodeUserNotFound, "user not found")
	ErrCommentNotFound = New(CodeCommentNotFound, "comment not found")
)

// NewInvalidPrompt 提示词校验失败，未发起任何外部调用
func NewInvalidPrompt(detail string) *AppError {
	return New(CodeInvalidPrompt, "invalid prompt").WithDetail(detail)
}

// NewServiceMisconfigured 缺少外部服务凭证
func NewServiceMisconfigured(detail string) *AppError {
	return New(CodeServiceMisconfigured, "service misconfigured").WithDetail(detail)
}

// NewInferenceExhausted 重试与回退全部用尽
func NewInferenceExhausted(attempts int, err error) *AppError {
	return Wrap(err, CodeInferenceExhausted, "image generation failed after all attempts").WithAttempts(attempts)
}

// NewArtifactPersist 推理成功后对象存储上传失败
func NewArtifactPersist(err error) *AppError {
	return Wrap(err, CodeArtifactPersist, "generated image could not be stored")
}

// NewCatalogWrite 制品已持久化但目录写入失败
func NewCatalogWrite(err error) *AppError {
	return Wrap(err, CodeCatalogWrite, "image catalog write failed")
}

// NewDatabaseError 数据库操作失败
func NewDatabaseError(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "database operation failed")
}

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
