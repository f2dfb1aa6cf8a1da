package shared

import (
	"errors"

	"github.com/ananas-next/internal/http/response"
	"github.com/ananas-next/internal/i18n"
	"github.com/ananas-next/internal/logger"
	"github.com/ananas-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	respondAppError(c, response.WrapError(code, i18n.T(i18n.ResolveLocale(c), key), err))
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	respondAppError(c, response.WrapError(code, msg, err))
}

// respondAppError 客户端错误记 warn，服务端错误记 error
func respondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		log := RequestLog(c)
		if appErr.ServerSide() {
			log.Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", appErr.Err)
		} else {
			log.Warnw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", appErr.Err)
		}
	}
	appErr.Write(c)
}

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// CommonErrorRules 错误分类的兜底映射，放在各接口自定义规则之后
var CommonErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrConcurrencyConflict, Code: response.CodeConflict, Key: "error.concurrency_conflict"},
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Key: "error.validation_failed"},
}

// RespondWithMappedError 按规则表返回错误；字段级校验错误附带字段明细。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedError, fallbackKey string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		locale := i18n.ResolveLocale(c)
		response.ErrorWithData(c, response.CodeBadRequest, i18n.T(locale, "error.validation_failed"), gin.H{"fields": verr.Fields})
		return
	}
	for _, group := range [][]MappedError{rules, CommonErrorRules} {
		for _, rule := range group {
			if errors.Is(err, rule.Target) {
				RespondError(c, rule.Code, rule.Key, nil)
				return
			}
		}
	}
	if errors.Is(err, service.ErrStorage) {
		RespondError(c, response.CodeInternal, "error.storage_failure", err)
		return
	}
	RespondError(c, response.CodeInternal, fallbackKey, err)
}

// RespondPasswordPolicyError 密码策略错误返回带参数的国际化提示。
func RespondPasswordPolicyError(c *gin.Context, err error) bool {
	if !errors.Is(err, service.ErrWeakPassword) {
		return false
	}
	locale := i18n.ResolveLocale(c)
	var perr interface {
		Key() string
		Args() []interface{}
	}
	if errors.As(err, &perr) {
		RespondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(locale, perr.Key(), perr.Args()...), nil)
		return true
	}
	RespondError(c, response.CodeBadRequest, "error.validation_failed", nil)
	return true
}

// RespondCaptchaError 验证码校验失败的统一响应。
func RespondCaptchaError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, []MappedError{
		{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
		{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	}, "error.internal")
}
