// Package apierr API 错误分类与统一响应
//
// 处理函数返回 error，由 Handle 适配器统一转换为 JSON 错误信封：
//
//	{"error": "...", "code": "VALIDATION_ERROR", "details": ...}
//
// 存储层错误（storage.ErrNotFound / ErrDuplicate）自动映射，其余一律视为内部错误。
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"shop-admin/internal/shared/storage"
)

// Kind 错误类别，取值即响应中的 code 字段
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindInvalidToken       Kind = "INVALID_TOKEN"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindForbidden          Kind = "FORBIDDEN"
	KindAccountDisabled    Kind = "ACCOUNT_DISABLED"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindInternal           Kind = "INTERNAL_ERROR"
)

// Status 类别对应的 HTTP 状态码
// 唯一键冲突沿用 400 而非 409
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidToken, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden, KindAccountDisabled:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error 带类别的 API 错误
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error // 原始错误，仅用于日志
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails 附加 details 字段
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func Unauthenticated(format string, args ...interface{}) *Error {
	return newError(KindUnauthenticated, format, args...)
}

func InvalidToken(format string, args ...interface{}) *Error {
	return newError(KindInvalidToken, format, args...)
}

func InvalidCredentials() *Error {
	return newError(KindInvalidCredentials, "invalid email or password")
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func AccountDisabled() *Error {
	return newError(KindAccountDisabled, "account is disabled")
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// Internal 包装意外错误，details 为原始错误信息
func Internal(err error) *Error {
	e := &Error{Kind: KindInternal, Message: "internal server error", Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// From 将任意错误归一化为 *Error
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "resource not found", Err: err}
	case errors.Is(err, storage.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: "resource already exists", Err: err}
	case errors.Is(err, storage.ErrEmptyCart):
		return &Error{Kind: KindValidation, Message: "cart is empty", Err: err}
	case errors.Is(err, storage.ErrQuantityLimit):
		return &Error{Kind: KindValidation, Message: "cart item quantity limit exceeded", Err: err}
	}
	return Internal(err)
}

// Is 判断 err 是否属于指定类别
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
