package dao

import (
	"context"
	"fmt"

	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/database/postgres"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// FrameDAO 前端框架统计数据访问
type FrameDAO struct {
	db     *postgres.Client
	logger logger.Logger
}

// NewFrameDAO 创建框架 DAO
func NewFrameDAO(db *postgres.Client, l logger.Logger) *FrameDAO {
	if l == nil {
		l = logger.Default()
	}
	return &FrameDAO{
		db:     db,
		logger: l.Named("dao.frame"),
	}
}

// ListFrameworks 按 id 升序返回全部框架
func (d *FrameDAO) ListFrameworks(ctx context.Context) ([]*model.Framework, error) {
	sql, args, err := postgres.QueryBuilder.
		Select("id", "name", "github_repo", "npm_package", "star_count", "npm_downloads").
		From("frontend_frameworks").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list failed: %w", err)
	}
	rows, err := postgres.QueryAll[model.Framework](d.db, ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list frameworks failed: %w", err)
	}
	return rows, nil
}

// UpdateStats 更新单个框架的 star 数和下载量
func (d *FrameDAO) UpdateStats(ctx context.Context, id int64, stars, downloads int64) error {
	sql, args, err := postgres.QueryBuilder.
		Update("frontend_frameworks").
		Set("star_count", stars).
		Set("npm_downloads", downloads).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update failed: %w", err)
	}
	if _, err := d.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update framework stats failed: %w", err)
	}
	return nil
}
