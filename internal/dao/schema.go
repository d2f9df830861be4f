package dao

import (
	"context"
	"fmt"

	"github.com/invinciblehaolong/halolab/pkg/database/postgres"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// 表结构按启动时自动建表的方式维护，全部语句可重复执行
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS gacha_records (
		id         VARCHAR(32) PRIMARY KEY,
		time       TIMESTAMPTZ NOT NULL,
		name       VARCHAR(64) NOT NULL,
		item_type  VARCHAR(32) NOT NULL,
		rank_type  SMALLINT    NOT NULL,
		gacha_type INTEGER     NOT NULL,
		uid        VARCHAR(16) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gacha_records_uid_time ON gacha_records (uid, time)`,
	`CREATE INDEX IF NOT EXISTS idx_gacha_records_rank ON gacha_records (rank_type)`,

	`CREATE TABLE IF NOT EXISTS five_star_intervals (
		id                  BIGSERIAL PRIMARY KEY,
		uid                 VARCHAR(16) NOT NULL,
		gacha_type          INTEGER     NOT NULL,
		five_star_record_id VARCHAR(32) NOT NULL UNIQUE REFERENCES gacha_records (id),
		five_star_name      VARCHAR(64) NOT NULL,
		pulls_between       INTEGER     NOT NULL,
		is_first            BOOLEAN     NOT NULL DEFAULT FALSE,
		record_time         TIMESTAMPTZ NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_five_star_intervals_uid ON five_star_intervals (uid, record_time)`,

	`CREATE TABLE IF NOT EXISTS todos (
		id        BIGSERIAL PRIMARY KEY,
		title     VARCHAR(255) NOT NULL,
		completed BOOLEAN      NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS frontend_frameworks (
		id            BIGSERIAL PRIMARY KEY,
		name          VARCHAR(32)  NOT NULL UNIQUE,
		github_repo   VARCHAR(128) NOT NULL,
		npm_package   VARCHAR(128) NOT NULL,
		star_count    BIGINT       NOT NULL DEFAULT 0,
		npm_downloads BIGINT       NOT NULL DEFAULT 0
	)`,
}

// 初始数据，重复执行不产生新行
var seedStatements = []string{
	`INSERT INTO todos (title, completed)
	 SELECT t.title, FALSE FROM (VALUES ('吃饭'), ('睡觉')) AS t(title)
	 WHERE NOT EXISTS (SELECT 1 FROM todos)`,
	`INSERT INTO frontend_frameworks (name, github_repo, npm_package) VALUES
		('react', 'facebook/react', 'react'),
		('vue', 'vuejs/core', 'vue'),
		('angular', 'angular/angular', '@angular/core'),
		('svelte', 'sveltejs/svelte', 'svelte')
	 ON CONFLICT (name) DO NOTHING`,
}

// EnsureSchema 建表、建索引并写入种子数据，服务启动时调用
func EnsureSchema(ctx context.Context, db *postgres.Client, l logger.Logger) error {
	if l == nil {
		l = logger.Default()
	}
	l = l.Named("dao.schema")

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema failed: %w", err)
		}
	}
	for _, stmt := range seedStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed data failed: %w", err)
		}
	}
	l.Info("database schema ensured")
	return nil
}
