package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/invinciblehaolong/halolab/internal/dao"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/internal/service"
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/web"
)

// RecordQuerier 抽卡记录的读路径
type RecordQuerier interface {
	Query(ctx context.Context, filter *dao.RecordFilter) ([]*model.GachaRecord, int64, error)
}

// GachaHandler 抽卡记录相关接口
type GachaHandler struct {
	svc     *service.GachaService
	records RecordQuerier
	logger  logger.Logger
}

// NewGachaHandler 创建抽卡接口处理器
func NewGachaHandler(svc *service.GachaService, records RecordQuerier, l logger.Logger) *GachaHandler {
	if l == nil {
		l = logger.Default()
	}
	return &GachaHandler{
		svc:     svc,
		records: records,
		logger:  l.Named("handler.gacha"),
	}
}

// queryInt 宽松解析整型查询参数，非数字当作未传，由过滤器收敛成默认值
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// Register 挂载路由
func (h *GachaHandler) Register(group *gin.RouterGroup) {
	group.POST("/gacha", h.Ingest)
	group.GET("/gacha/records", h.QueryRecords)
}

type ingestRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxPages int    `json:"max_pages"`
}

// Ingest 导入抽卡记录
func (h *GachaHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Error(c, http.StatusBadRequest, 400, "url is required")
		return
	}

	result, err := h.svc.Ingest(c.Request.Context(), req.URL, req.MaxPages)
	if err != nil {
		h.writeIngestError(c, err)
		return
	}
	web.Success(c, result)
}

// writeIngestError 把领域错误映射成 HTTP 状态码，
// 调用方可修复的问题给 4xx，服务端或上游问题给 5xx
func (h *GachaHandler) writeIngestError(c *gin.Context, err error) {
	var linkErr *service.InvalidLinkError
	var upErr *service.UpstreamError
	var transient *service.TransientError

	switch {
	case errors.As(err, &linkErr):
		web.Error(c, http.StatusBadRequest, 400, linkErr.Error())
	case errors.Is(err, service.ErrAuthExpired):
		web.Error(c, http.StatusUnauthorized, 401, "export link expired, paste a fresh one")
	case errors.As(err, &upErr):
		web.Error(c, http.StatusBadGateway, 502, upErr.Error())
	case errors.As(err, &transient):
		web.Error(c, http.StatusGatewayTimeout, 504, "upstream request timed out, try again later")
	default:
		h.logger.Error("gacha ingest failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
	}
}

// QueryRecords 分页查询已入库的抽卡记录。分页参数非法时收敛成默认值而不是报错
func (h *GachaHandler) QueryRecords(c *gin.Context) {
	filter := dao.RecordFilter{
		UID:       c.Query("uid"),
		GachaType: queryInt(c, "gacha_type"),
		RankType:  queryInt(c, "rank_type"),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	}

	rows, total, err := h.records.Query(c.Request.Context(), &filter)
	if err != nil {
		h.logger.Error("query gacha records failed", "error", err)
		web.Error(c, http.StatusInternalServerError, 500, "internal error")
		return
	}
	web.Success(c, gin.H{
		"records":    rows,
		"pagination": web.NewPagination(total, filter.Page, filter.Limit),
	})
}
