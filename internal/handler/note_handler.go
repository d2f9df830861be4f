package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invinciblehaolong/halolab/internal/service"
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/web"
)

// NoteHandler 本地笔记浏览接口
type NoteHandler struct {
	svc    *service.NoteService
	logger logger.Logger
}

// NewNoteHandler 创建笔记接口处理器
func NewNoteHandler(svc *service.NoteService, l logger.Logger) *NoteHandler {
	if l == nil {
		l = logger.Default()
	}
	return &NoteHandler{
		svc:    svc,
		logger: l.Named("handler.note"),
	}
}

// Register 挂载路由
func (h *NoteHandler) Register(group *gin.RouterGroup) {
	group.GET("/notes", h.List)
	group.GET("/notes/content", h.Content)
}

// List 列出可浏览的 markdown 文件
func (h *NoteHandler) List(c *gin.Context) {
	files, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list notes failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, files)
}

// Content 返回单个笔记的内容
func (h *NoteHandler) Content(c *gin.Context) {
	path := c.Query("file_path")
	if path == "" {
		web.Error(c, http.StatusBadRequest, 400, "file_path is required")
		return
	}

	content, err := h.svc.Read(c.Request.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoteOutsideRoot), errors.Is(err, service.ErrNotMarkdown):
			web.Error(c, http.StatusForbidden, 403, "access denied")
		case errors.Is(err, service.ErrNoteNotFound):
			web.Error(c, http.StatusNotFound, 404, "note not found")
		default:
			h.logger.Error("read note failed", "path", path, "error", err)
			web.Error(c, http.StatusInternalServerError, 500, "internal error")
		}
		return
	}
	web.Success(c, gin.H{"content": content})
}
