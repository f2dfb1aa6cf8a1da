package authz

import "errors"

var (
	ErrUnavailable   = errors.New("authz service unavailable")
	ErrRoleRequired  = errors.New("role is required")
	ErrRoleInvalid   = errors.New("role contains invalid characters")
	ErrRoleReserved  = errors.New("reserved role is not allowed")
	ErrActionInvalid = errors.New("action must be an http method or *")
	ErrAdminRequired = errors.New("admin id is required")
)

// IsInputError 判断是否为调用方输入错误（区别于存储或引擎错误）
func IsInputError(err error) bool {
	return errors.Is(err, ErrRoleRequired) ||
		errors.Is(err, ErrRoleInvalid) ||
		errors.Is(err, ErrRoleReserved) ||
		errors.Is(err, ErrActionInvalid) ||
		errors.Is(err, ErrAdminRequired)
}
