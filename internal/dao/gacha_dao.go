package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/invinciblehaolong/halolab/internal/metrics"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/database/postgres"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// 记录查询分页上限
const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

// RecordFilter 抽卡记录查询条件
type RecordFilter struct {
	UID       string
	GachaType int
	RankType  int
	Page      int
	Limit     int
}

func (f *RecordFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultRecordLimit
	}
	if f.Limit > maxRecordLimit {
		f.Limit = maxRecordLimit
	}
}

// GachaDAO 抽卡记录数据访问
type GachaDAO struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.HaloMetrics
}

// NewGachaDAO 创建抽卡记录 DAO
func NewGachaDAO(db *postgres.Client, l logger.Logger, m *metrics.HaloMetrics) *GachaDAO {
	if l == nil {
		l = logger.Default()
	}
	return &GachaDAO{
		db:      db,
		logger:  l.Named("dao.gacha"),
		metrics: m,
	}
}

// BulkInsert 批量写入抽卡记录，主键冲突的行跳过，返回实际新增条数
func (d *GachaDAO) BulkInsert(ctx context.Context, records []*model.GachaRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	builder := postgres.QueryBuilder.
		Insert("gacha_records").
		Columns("id", "time", "name", "item_type", "rank_type", "gacha_type", "uid")
	for _, r := range records {
		builder = builder.Values(r.ID, r.Time, r.Name, r.ItemType, r.RankType, r.GachaType, r.UID)
	}
	sql, args, err := builder.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert failed: %w", err)
	}

	defer d.observe("gacha.bulk_insert", time.Now())
	inserted, err := d.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert gacha records failed: %w", err)
	}
	d.logger.Debug("bulk insert gacha records", "total", len(records), "inserted", inserted)
	return inserted, nil
}

// Query 按条件分页查询抽卡记录，按时间倒序返回，并附带总数
func (d *GachaDAO) Query(ctx context.Context, filter *RecordFilter) ([]*model.GachaRecord, int64, error) {
	filter.normalize()

	where := squirrel.And{}
	if filter.UID != "" {
		where = append(where, squirrel.Eq{"uid": filter.UID})
	}
	if filter.GachaType != 0 {
		// 301 查询同时命中 400 池
		group := model.PoolGroup(filter.GachaType)
		if group == 301 {
			where = append(where, squirrel.Eq{"gacha_type": []int{301, 400}})
		} else {
			where = append(where, squirrel.Eq{"gacha_type": filter.GachaType})
		}
	}
	if filter.RankType != 0 {
		where = append(where, squirrel.Eq{"rank_type": filter.RankType})
	}

	countSQL, countArgs, err := postgres.QueryBuilder.
		Select("COUNT(*)").From("gacha_records").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count failed: %w", err)
	}
	total, err := d.db.Count(ctx, countSQL, countArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("count gacha records failed: %w", err)
	}

	sql, args, err := postgres.QueryBuilder.
		Select("id", "time", "name", "item_type", "rank_type", "gacha_type", "uid").
		From("gacha_records").
		Where(where).
		OrderBy("time DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64((filter.Page - 1) * filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query failed: %w", err)
	}

	defer d.observe("gacha.query", time.Now())
	rows, err := postgres.QueryAll[model.GachaRecord](d.db, ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query gacha records failed: %w", err)
	}
	return rows, total, nil
}

// ListOrdered 返回全部记录，按 uid、时间、id 升序，供间隔计算使用
func (d *GachaDAO) ListOrdered(ctx context.Context) ([]*model.GachaRecord, error) {
	sql, args, err := postgres.QueryBuilder.
		Select("id", "time", "name", "item_type", "rank_type", "gacha_type", "uid").
		From("gacha_records").
		OrderBy("uid ASC", "time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list failed: %w", err)
	}

	defer d.observe("gacha.list_ordered", time.Now())
	rows, err := postgres.QueryAll[model.GachaRecord](d.db, ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list gacha records failed: %w", err)
	}
	return rows, nil
}

func (d *GachaDAO) observe(op string, start time.Time) {
	if d.metrics != nil {
		d.metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
