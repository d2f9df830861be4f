package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/invinciblehaolong/halolab/internal/metrics"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/config"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// GachaStore 抽卡记录持久化接口，返回实际新增的条数
type GachaStore interface {
	BulkInsert(ctx context.Context, records []*model.GachaRecord) (int64, error)
}

// GachaConfig 抓取流程配置
type GachaConfig struct {
	// MaxPages 单次导入最多抓取的页数上限
	MaxPages int `mapstructure:"max_pages" json:"max_pages" yaml:"max_pages"`
	// PageInterval 相邻两页之间的最小间隔，上游有频控
	PageInterval time.Duration `mapstructure:"page_interval" json:"page_interval" yaml:"page_interval"`
	// Fetch 上游接口配置
	Fetch FetchConfig `mapstructure:"fetch" json:"fetch" yaml:"fetch"`
}

// DefaultGachaConfig 返回默认配置
func DefaultGachaConfig() *GachaConfig {
	return &GachaConfig{
		MaxPages:     100,
		PageInterval: 1500 * time.Millisecond,
		Fetch:        *DefaultFetchConfig(),
	}
}

// IngestResult 一次导入的汇总结果
type IngestResult struct {
	// UniqueCount 去重后的记录总数
	UniqueCount int `json:"unique_count"`
	// StoredCount 实际写入的新记录数，已有记录不计入
	StoredCount int64 `json:"stored_count"`
	// PoolName 本次导入的卡池名
	PoolName string `json:"pool_name"`
	// UID 记录归属的玩家
	UID string `json:"uid"`
	// Truncated 是否因达到页数上限被截断
	Truncated bool `json:"truncated"`
}

// GachaService 抽卡记录导入协调器，负责翻页抓取、去重和落库
type GachaService struct {
	cfg     *GachaConfig
	fetcher PageFetcher
	store   GachaStore
	pace    *rate.Limiter
	logger  logger.Logger
	metrics *metrics.HaloMetrics
}

// NewGachaService 创建导入服务
func NewGachaService(cfg *GachaConfig, fetcher PageFetcher, store GachaStore, l logger.Logger, m *metrics.HaloMetrics) (*GachaService, error) {
	merged, err := config.MergeConfig(DefaultGachaConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("merge gacha config failed: %w", err)
	}
	if l == nil {
		l = logger.Default()
	}
	return &GachaService{
		cfg:     merged,
		fetcher: fetcher,
		store:   store,
		pace:    rate.NewLimiter(rate.Every(merged.PageInterval), 1),
		logger:  l.Named("service.gacha"),
		metrics: m,
	}, nil
}

// Ingest 解析导出链接并逐页拉取记录，全部抓完后一次性落库。
// maxPages 小于等于 0 时使用配置上限。抓取中途失败时返回已累计的
// 数量和错误，此时不写库。
func (s *GachaService) Ingest(ctx context.Context, rawURL string, maxPages int) (*IngestResult, error) {
	params, err := ParseGachaLink(rawURL)
	if err != nil {
		return nil, err
	}
	if maxPages <= 0 || maxPages > s.cfg.MaxPages {
		maxPages = s.cfg.MaxPages
	}

	result := &IngestResult{PoolName: params.PoolName()}

	// 以 id 去重，保留首次出现的记录，同时维持抓取顺序
	seen := make(map[string]struct{})
	var records []*model.GachaRecord
	endCursor := "0"

	start := time.Now()
	for page := 1; page <= maxPages; page++ {
		if err := s.pace.Wait(ctx); err != nil {
			result.UniqueCount = len(records)
			return result, classifyFetchErr("wait pacing", err)
		}

		pageData, err := s.fetcher.FetchPage(ctx, params, page, endCursor)
		if err != nil {
			result.UniqueCount = len(records)
			s.logger.Error("fetch gacha page failed", "page", page, "error", err)
			return result, err
		}
		if s.metrics != nil {
			s.metrics.IngestPagesTotal.Inc()
		}

		for _, record := range pageData.Records {
			if result.UID == "" {
				result.UID = record.UID
			}
			if _, ok := seen[record.ID]; ok {
				continue
			}
			seen[record.ID] = struct{}{}
			records = append(records, record)
		}
		// 翻页游标取上游原始末尾 id，重复或被剔除的记录也参与推进
		if pageData.LastRawID != "" {
			endCursor = pageData.LastRawID
		}

		// 不满一页说明已经到底，以上游原始条数为准，坏数据剔除不影响判定
		if pageData.RawCount < pageSize {
			break
		}
		if page == maxPages {
			// 数据恰好在第 maxPages 页耗尽时无法分辨，需要多拉一页才能确认，统一按截断上报
			result.Truncated = true
		}
	}

	result.UniqueCount = len(records)

	stored, err := s.store.BulkInsert(ctx, records)
	if err != nil {
		return result, fmt.Errorf("store gacha records failed: %w", err)
	}
	result.StoredCount = stored

	if s.metrics != nil {
		s.metrics.IngestRecordsTotal.WithLabelValues("stored").Add(float64(stored))
		s.metrics.IngestRecordsTotal.WithLabelValues("duplicate").Add(float64(int64(len(records)) - stored))
	}
	s.logger.Info("gacha ingest finished",
		"uid", result.UID,
		"pool", result.PoolName,
		"unique", result.UniqueCount,
		"stored", result.StoredCount,
		"truncated", result.Truncated,
		"cost", time.Since(start).String(),
	)
	return result, nil
}
