package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/invinciblehaolong/halolab/internal/dao"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/web"
)

// TodoStore 待办存取接口
type TodoStore interface {
	List(ctx context.Context) ([]*model.Todo, error)
	Get(ctx context.Context, id int64) (*model.Todo, error)
	Create(ctx context.Context, title string) (*model.Todo, error)
	Update(ctx context.Context, id int64, title *string, completed *bool) (*model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// TodoHandler 待办事项接口
type TodoHandler struct {
	store  TodoStore
	logger logger.Logger
}

// NewTodoHandler 创建待办接口处理器
func NewTodoHandler(store TodoStore, l logger.Logger) *TodoHandler {
	if l == nil {
		l = logger.Default()
	}
	return &TodoHandler{
		store:  store,
		logger: l.Named("handler.todo"),
	}
}

// Register 挂载路由
func (h *TodoHandler) Register(group *gin.RouterGroup) {
	group.GET("/todos", h.List)
	group.GET("/todos/:id", h.Get)
	group.POST("/todos", h.Create)
	group.PUT("/todos/:id", h.Update)
	group.DELETE("/todos/:id", h.Delete)
}

// List 返回全部待办
func (h *TodoHandler) List(c *gin.Context) {
	todos, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list todos failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, todos)
}

// Get 按 id 返回单个待办
func (h *TodoHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		web.Error(c, http.StatusBadRequest, 400, "invalid todo id")
		return
	}

	todo, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, dao.ErrTodoNotFound) {
			web.Error(c, http.StatusNotFound, 404, "todo not found")
			return
		}
		h.logger.Error("get todo failed", "id", id, "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, todo)
}

type createTodoRequest struct {
	Title string `json:"title" binding:"required"`
}

// Create 新增待办
func (h *TodoHandler) Create(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Error(c, http.StatusBadRequest, 400, "title is required")
		return
	}

	todo, err := h.store.Create(c.Request.Context(), req.Title)
	if err != nil {
		h.logger.Error("create todo failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, todo)
}

type updateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Update 更新标题或完成状态
func (h *TodoHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		web.Error(c, http.StatusBadRequest, 400, "invalid todo id")
		return
	}
	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Error(c, http.StatusBadRequest, 400, "invalid request body")
		return
	}
	if req.Title == nil && req.Completed == nil {
		web.Error(c, http.StatusBadRequest, 400, "nothing to update")
		return
	}

	todo, err := h.store.Update(c.Request.Context(), id, req.Title, req.Completed)
	if err != nil {
		if errors.Is(err, dao.ErrTodoNotFound) {
			web.Error(c, http.StatusNotFound, 404, "todo not found")
			return
		}
		h.logger.Error("update todo failed", "id", id, "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, todo)
}

// Delete 删除待办
func (h *TodoHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		web.Error(c, http.StatusBadRequest, 400, "invalid todo id")
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, dao.ErrTodoNotFound) {
			web.Error(c, http.StatusNotFound, 404, "todo not found")
			return
		}
		h.logger.Error("delete todo failed", "id", id, "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, gin.H{"id": id})
}
