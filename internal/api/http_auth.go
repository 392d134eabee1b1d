package api

import (
	"errors"
	"net/http"

	"dqdash/internal/entity/dto"
	"dqdash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 登录结果标签
const (
	loginOutcomeSuccess     = "success"
	loginOutcomeInvalid     = "invalid_credentials"
	loginOutcomeDisabled    = "disabled"
	loginOutcomeRateLimited = "rate_limited"
	loginOutcomeError       = "error"
)

func (h *HTTPHandler) Login(c *gin.Context) {
	if !h.loginLimiter.Allow(c.ClientIP()) {
		h.metrics.ObserveLogin(loginOutcomeRateLimited)
		c.Header("Retry-After", "1")
		ErrorResponse(c, http.StatusTooManyRequests, ErrCodeTooManyRequests, "too many login attempts")
		return
	}

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	token, err := h.gate.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.metrics.ObserveLogin(loginOutcomeInvalid)
			logrus.WithField("client_ip", c.ClientIP()).Warn("login attempt failed")
		case errors.Is(err, service.ErrUserDisabled):
			h.metrics.ObserveLogin(loginOutcomeDisabled)
			logrus.WithField("email", req.Email).Warn("login attempt for inactive user")
		default:
			h.metrics.ObserveLogin(loginOutcomeError)
		}
		respondError(c, err)
		return
	}

	h.metrics.ObserveLogin(loginOutcomeSuccess)
	c.JSON(http.StatusOK, token)
}

func (h *HTTPHandler) Me(c *gin.Context) {
	out, err := h.directory.DescribeUser(c.Request.Context(), CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
