package response

import "github.com/gin-gonic/gin"

// AppError 接口错误：业务码、面向用户的文案与内部原因
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ServerSide 5xx 类错误
func (e *AppError) ServerSide() bool {
	return e.Code >= CodeInternal
}

// Write 输出错误响应，内部原因不会返回给调用方
func (e *AppError) Write(c *gin.Context) {
	Error(c, e.Code, e.Message)
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
