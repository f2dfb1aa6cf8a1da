package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleVI = "vi-VN"
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleVI

// ResolveLocale 按 lang 查询参数、X-Locale 请求头、Accept-Language 依次解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	candidates := []string{
		c.Query("lang"),
		c.GetHeader("X-Locale"),
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag != "" {
			candidates = append(candidates, tag)
		}
	}
	for _, candidate := range candidates {
		if locale, ok := NormalizeLocale(candidate); ok {
			return locale
		}
	}
	return DefaultLocale
}

// NormalizeLocale 归一化语言标识，无法识别时返回 false
func NormalizeLocale(raw string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "":
		return "", false
	case strings.HasPrefix(value, "vi"):
		return LocaleVI, true
	case strings.HasPrefix(value, "en"):
		return LocaleEN, true
	case strings.HasPrefix(value, "zh"):
		return LocaleZH, true
	default:
		return "", false
	}
}

// T 翻译 key，缺失时依次回退到英文与 key 本身
func T(locale, key string) string {
	normalized, ok := NormalizeLocale(locale)
	if !ok {
		normalized = DefaultLocale
	}
	if msg, ok := catalog[normalized][key]; ok {
		return msg
	}
	if msg, ok := catalog[LocaleEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
