package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 资源不存在
var (
	ErrNotFound         = errors.New("not found")
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
)

// 参数校验失败
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidInput       = fmt.Errorf("invalid input: %w", ErrValidation)
	ErrInvalidPriceRange  = fmt.Errorf("invalid price range: %w", ErrValidation)
	ErrInvalidOrderStatus = fmt.Errorf("invalid order status transition: %w", ErrValidation)
	ErrCategoryInUse      = fmt.Errorf("category in use: %w", ErrValidation)
	ErrCategoryExists     = fmt.Errorf("category already exists: %w", ErrValidation)
	ErrUploadInvalid      = fmt.Errorf("invalid upload: %w", ErrValidation)
)

// ErrCartEmpty 空购物车结算（守卫，不是错误页）
var ErrCartEmpty = errors.New("cart is empty")

// 并发冲突
var (
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrInsufficientStock   = fmt.Errorf("insufficient stock: %w", ErrConcurrencyConflict)
)

// ErrStorage 存储层失败
var ErrStorage = errors.New("storage failure")

// 身份认证
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
	ErrWeakPassword       = fmt.Errorf("password does not meet policy: %w", ErrValidation)
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrCaptchaDisabled    = errors.New("captcha disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidEmail       = fmt.Errorf("invalid email: %w", ErrValidation)
)

// 邮件
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// ValidationError 字段级校验错误
type ValidationError struct {
	Fields map[string]string
}

// Error 实现 error
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap 支持 errors.Is(err, ErrValidation)
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add 记录字段错误
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// OrNil 没有字段错误时返回 nil
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// storageError 包装底层存储错误
func storageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
