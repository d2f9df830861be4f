package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invinciblehaolong/halolab/internal/service"
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/web"
)

// AuthHandler 登录接口
type AuthHandler struct {
	svc    *service.AuthService
	logger logger.Logger
}

// NewAuthHandler 创建认证接口处理器
func NewAuthHandler(svc *service.AuthService, l logger.Logger) *AuthHandler {
	if l == nil {
		l = logger.Default()
	}
	return &AuthHandler{
		svc:    svc,
		logger: l.Named("handler.auth"),
	}
}

// Register 挂载路由
func (h *AuthHandler) Register(group *gin.RouterGroup) {
	group.POST("/auth/login", h.Login)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 账号密码换取 token
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Error(c, http.StatusBadRequest, 400, "username and password are required")
		return
	}

	result, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			web.Error(c, http.StatusUnauthorized, 401, "invalid username or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, result)
}
