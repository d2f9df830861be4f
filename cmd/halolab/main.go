package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/invinciblehaolong/halolab/internal/dao"
	"github.com/invinciblehaolong/halolab/internal/handler"
	"github.com/invinciblehaolong/halolab/internal/metrics"
	"github.com/invinciblehaolong/halolab/internal/service"
	"github.com/invinciblehaolong/halolab/pkg/config"
	"github.com/invinciblehaolong/halolab/pkg/database/postgres"
	"github.com/invinciblehaolong/halolab/pkg/database/redis"
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/security"
	"github.com/invinciblehaolong/halolab/pkg/web"
	"github.com/invinciblehaolong/halolab/pkg/web/middleware"
)

// Config 服务全量配置
type Config struct {
	Log       logger.Config       `mapstructure:"log"`
	Web       web.Config          `mapstructure:"web"`
	Postgres  postgres.Config     `mapstructure:"postgres"`
	Redis     redis.Config        `mapstructure:"redis"`
	JWT       security.JWTConfig  `mapstructure:"jwt"`
	Gacha     service.GachaConfig `mapstructure:"gacha"`
	Notes     service.NoteConfig  `mapstructure:"notes"`
	Frames    service.FrameConfig `mapstructure:"frames"`
	Cron      CronConfig          `mapstructure:"cron"`
	RateLimit RateLimitConfig     `mapstructure:"rate_limit"`
}

// CronConfig 定时任务配置，表达式为空表示不启用对应任务
type CronConfig struct {
	// FrameRefreshSpec 框架热度刷新计划
	FrameRefreshSpec string `mapstructure:"frame_refresh_spec"`
	// RecomputeSpec 五星间隔重算计划
	RecomputeSpec string `mapstructure:"recompute_spec"`
}

// RateLimitConfig HTTP 限流配置
type RateLimitConfig struct {
	RequestsPerSecond int  `mapstructure:"requests_per_second"`
	PerIP             bool `mapstructure:"per_ip"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库
	db, err := postgres.New(&cfg.Postgres)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	defer db.Close()
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := dao.EnsureSchema(ctx, db, log); err != nil {
		return err
	}

	// Redis 不可用时降级运行，缓存和重算互斥靠数据库约束兜底
	var cache *redis.Client
	if c, err := redis.New(&cfg.Redis); err != nil {
		log.Warn("init redis failed, running without cache", "error", err)
	} else if err := c.Ping(ctx); err != nil {
		log.Warn("ping redis failed, running without cache", "error", err)
		c.Close()
	} else {
		cache = c
		defer cache.Close()
	}

	// 指标
	registry := prometheus.NewRegistry()
	haloMetrics := metrics.New("halolab")
	if err := haloMetrics.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// 安全
	jwtMgr, err := security.NewJWTManager(&cfg.JWT)
	if err != nil {
		return fmt.Errorf("init jwt manager: %w", err)
	}

	// DAO
	gachaDAO := dao.NewGachaDAO(db, log, haloMetrics)
	fiveStarDAO := dao.NewFiveStarDAO(db, log, haloMetrics)
	todoDAO := dao.NewTodoDAO(db, log)
	frameDAO := dao.NewFrameDAO(db, log)

	// 服务
	fetcher, err := service.NewHTTPLogFetcher(&cfg.Gacha.Fetch, log)
	if err != nil {
		return fmt.Errorf("init gacha fetcher: %w", err)
	}
	gachaSvc, err := service.NewGachaService(&cfg.Gacha, fetcher, gachaDAO, log, haloMetrics)
	if err != nil {
		return fmt.Errorf("init gacha service: %w", err)
	}
	fiveStarSvc := service.NewFiveStarService(gachaDAO, fiveStarDAO, cache, log, haloMetrics)
	authSvc := service.NewAuthService(jwtMgr, log)
	noteSvc, err := service.NewNoteService(&cfg.Notes, log)
	if err != nil {
		return fmt.Errorf("init note service: %w", err)
	}
	frameSvc, err := service.NewFrameService(&cfg.Frames, frameDAO, cache, log, haloMetrics)
	if err != nil {
		return fmt.Errorf("init frame service: %w", err)
	}

	// Web
	server := web.NewServer(&cfg.Web, log)
	router := server.Router()
	router.Use(middleware.CORS())
	router.Use(metrics.GinMiddleware(haloMetrics))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(log, &middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			PerIP:             cfg.RateLimit.PerIP,
			SkipPaths:         []string{"/health", "/metrics"},
		})
		defer limiter.Close()
		router.Use(middleware.RateLimit(limiter))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	handler.NewAuthHandler(authSvc, log).Register(api)
	handler.NewGachaHandler(gachaSvc, gachaDAO, log).Register(api)
	handler.NewFiveStarHandler(fiveStarSvc, fiveStarDAO, log).Register(api)
	handler.NewFrameHandler(frameSvc, log).Register(api)
	handler.NewNoteHandler(noteSvc, log).Register(api)

	// 待办和笔记写操作要求登录
	authed := router.Group("/api", middleware.JWTAuth(jwtMgr))
	handler.NewTodoHandler(todoDAO, log).Register(authed)

	// 定时任务
	scheduler := cron.New()
	if spec := cfg.Cron.FrameRefreshSpec; spec != "" {
		if _, err := scheduler.AddFunc(spec, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := frameSvc.RefreshAll(jobCtx); err != nil {
				log.Warn("scheduled frame refresh failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule frame refresh: %w", err)
		}
	}
	if spec := cfg.Cron.RecomputeSpec; spec != "" {
		if _, err := scheduler.AddFunc(spec, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := fiveStarSvc.Recompute(jobCtx); err != nil {
				log.Warn("scheduled recompute failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule recompute: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	return server.Run(ctx)
}
