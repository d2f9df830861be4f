package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/invinciblehaolong/halolab/internal/metrics"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/config"
	"github.com/invinciblehaolong/halolab/pkg/database/redis"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// FrameStore 前端框架统计数据持久化接口
type FrameStore interface {
	ListFrameworks(ctx context.Context) ([]*model.Framework, error)
	UpdateStats(ctx context.Context, id int64, stars, downloads int64) error
}

// FrameConfig 框架热度统计配置
type FrameConfig struct {
	// GithubAPI GitHub 仓库信息接口前缀
	GithubAPI string `mapstructure:"github_api" json:"github_api" yaml:"github_api"`
	// NpmAPI npm 周下载量接口前缀
	NpmAPI string `mapstructure:"npm_api" json:"npm_api" yaml:"npm_api"`
	// Timeout 单次外部请求超时
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	// CacheTTL 列表缓存有效期
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl"`
	// Concurrency 刷新时的并发上限
	Concurrency int `mapstructure:"concurrency" json:"concurrency" yaml:"concurrency"`
}

// DefaultFrameConfig 返回默认配置
func DefaultFrameConfig() *FrameConfig {
	return &FrameConfig{
		GithubAPI:   "https://api.github.com/repos",
		NpmAPI:      "https://api.npmjs.org/downloads/point/last-week",
		Timeout:     10 * time.Second,
		CacheTTL:    12 * time.Hour,
		Concurrency: 4,
	}
}

// frameCacheKey 框架列表在 Redis 中的缓存键
const frameCacheKey = "cache:frames:list"

// FrameService 前端框架热度统计，聚合 GitHub star 和 npm 下载量
type FrameService struct {
	cfg     *FrameConfig
	store   FrameStore
	cache   *redis.Client
	client  *http.Client
	logger  logger.Logger
	metrics *metrics.HaloMetrics
}

// NewFrameService 创建框架统计服务，cache 为 nil 时每次直读数据库
func NewFrameService(cfg *FrameConfig, store FrameStore, cache *redis.Client, l logger.Logger, m *metrics.HaloMetrics) (*FrameService, error) {
	merged, err := config.MergeConfig(DefaultFrameConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("merge frame config failed: %w", err)
	}
	if l == nil {
		l = logger.Default()
	}
	return &FrameService{
		cfg:     merged,
		store:   store,
		cache:   cache,
		client:  &http.Client{Timeout: merged.Timeout},
		logger:  l.Named("service.frame"),
		metrics: m,
	}, nil
}

// List 返回全部框架及其统计。force 为 true 时先刷新外部数据，
// 否则优先走缓存。
func (s *FrameService) List(ctx context.Context, force bool) ([]*model.Framework, error) {
	if force {
		if err := s.RefreshAll(ctx); err != nil {
			// 刷新失败降级为返回存量数据
			s.logger.Warn("refresh framework stats failed, serving stale data", "error", err)
		}
	} else if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	frames, err := s.store.ListFrameworks(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, frames)
	return frames, nil
}

// RefreshAll 并发刷新每个框架的 star 数和下载量，全部完成后使缓存失效。
// 单个框架失败只记日志，不中断其余刷新。
func (s *FrameService) RefreshAll(ctx context.Context) error {
	frames, err := s.store.ListFrameworks(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, frame := range frames {
		frame := frame
		g.Go(func() error {
			if err := s.refreshOne(gctx, frame); err != nil {
				s.logger.Warn("refresh framework failed", "name", frame.Name, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if s.cache != nil {
		if _, err := s.cache.Del(ctx, frameCacheKey); err != nil {
			s.logger.Warn("invalidate framework cache failed", "error", err)
		}
	}
	return nil
}

func (s *FrameService) refreshOne(ctx context.Context, frame *model.Framework) error {
	stars, err := s.fetchGithubStars(ctx, frame.GithubRepo)
	if err != nil {
		return err
	}
	downloads, err := s.fetchNpmDownloads(ctx, frame.NpmPackage)
	if err != nil {
		return err
	}
	return s.store.UpdateStats(ctx, frame.ID, stars, downloads)
}

func (s *FrameService) fetchGithubStars(ctx context.Context, repo string) (int64, error) {
	var payload struct {
		StargazersCount int64 `json:"stargazers_count"`
	}
	if err := s.getJSON(ctx, fmt.Sprintf("%s/%s", s.cfg.GithubAPI, repo), &payload); err != nil {
		return 0, fmt.Errorf("fetch github stars for %q failed: %w", repo, err)
	}
	return payload.StargazersCount, nil
}

func (s *FrameService) fetchNpmDownloads(ctx context.Context, pkg string) (int64, error) {
	var payload struct {
		Downloads int64 `json:"downloads"`
	}
	if err := s.getJSON(ctx, fmt.Sprintf("%s/%s", s.cfg.NpmAPI, pkg), &payload); err != nil {
		return 0, fmt.Errorf("fetch npm downloads for %q failed: %w", pkg, err)
	}
	return payload.Downloads, nil
}

func (s *FrameService) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func (s *FrameService) fromCache(ctx context.Context) ([]*model.Framework, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, frameCacheKey)
	if err != nil {
		if !errors.Is(err, redis.ErrNil) {
			s.logger.Warn("read framework cache failed", "error", err)
		}
		s.countCache("miss")
		return nil, false
	}
	var frames []*model.Framework
	if err := json.Unmarshal([]byte(raw), &frames); err != nil {
		s.countCache("miss")
		return nil, false
	}
	s.countCache("hit")
	return frames, true
}

func (s *FrameService) toCache(ctx context.Context, frames []*model.Framework) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(frames)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, frameCacheKey, string(raw), s.cfg.CacheTTL); err != nil {
		s.logger.Warn("write framework cache failed", "error", err)
	}
}

func (s *FrameService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.CacheRequestTotal.WithLabelValues("frames", result).Inc()
	}
}
