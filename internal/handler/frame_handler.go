package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invinciblehaolong/halolab/internal/service"
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/web"
)

// FrameHandler 前端框架热度接口
type FrameHandler struct {
	svc    *service.FrameService
	logger logger.Logger
}

// NewFrameHandler 创建框架接口处理器
func NewFrameHandler(svc *service.FrameService, l logger.Logger) *FrameHandler {
	if l == nil {
		l = logger.Default()
	}
	return &FrameHandler{
		svc:    svc,
		logger: l.Named("handler.frame"),
	}
}

// Register 挂载路由
func (h *FrameHandler) Register(group *gin.RouterGroup) {
	group.GET("/frames", h.List)
}

// List 返回框架热度列表，force=1 强制刷新外部数据
func (h *FrameHandler) List(c *gin.Context) {
	force := c.Query("force") == "1"

	frames, err := h.svc.List(c.Request.Context(), force)
	if err != nil {
		h.logger.Error("list frameworks failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, frames)
}
