package public

import (
	"errors"

	"github.com/ananas-next/internal/http/response"
	"github.com/ananas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCaptcha 获取验证码配置；启用时附带一张图片验证码
func (h *Handler) GetCaptcha(c *gin.Context) {
	setting := h.CaptchaService.PublicSetting()
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		if errors.Is(err, service.ErrCaptchaDisabled) {
			response.Success(c, gin.H{"setting": setting})
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"setting":   setting,
		"challenge": challenge,
	})
}
