package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invinciblehaolong/halolab/internal/dao"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/internal/service"
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/web"
)

// IntervalQuerier 五星间隔的读路径
type IntervalQuerier interface {
	Query(ctx context.Context, filter *dao.IntervalFilter) ([]*model.FiveStarInterval, int64, error)
}

// FiveStarHandler 五星间隔相关接口
type FiveStarHandler struct {
	svc       *service.FiveStarService
	intervals IntervalQuerier
	logger    logger.Logger
}

// NewFiveStarHandler 创建五星接口处理器
func NewFiveStarHandler(svc *service.FiveStarService, intervals IntervalQuerier, l logger.Logger) *FiveStarHandler {
	if l == nil {
		l = logger.Default()
	}
	return &FiveStarHandler{
		svc:       svc,
		intervals: intervals,
		logger:    l.Named("handler.fivestar"),
	}
}

// Register 挂载路由
func (h *FiveStarHandler) Register(group *gin.RouterGroup) {
	group.POST("/five-star/calculate", h.Calculate)
	group.GET("/five-star/intervals", h.QueryIntervals)
}

// Calculate 触发全量重算
func (h *FiveStarHandler) Calculate(c *gin.Context) {
	result, err := h.svc.Recompute(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRecomputeBusy) {
			web.Error(c, http.StatusConflict, 409, "recompute already in progress")
			return
		}
		h.logger.Error("five-star recompute failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, result)
}

// QueryIntervals 分页查询五星间隔。分页参数非法时收敛成默认值而不是报错
func (h *FiveStarHandler) QueryIntervals(c *gin.Context) {
	filter := dao.IntervalFilter{
		UID:       c.Query("uid"),
		GachaType: queryInt(c, "gacha_type"),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	}

	rows, total, err := h.intervals.Query(c.Request.Context(), &filter)
	if err != nil {
		h.logger.Error("query intervals failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, gin.H{
		"intervals":  rows,
		"pagination": web.NewPagination(total, filter.Page, filter.Limit),
	})
}
