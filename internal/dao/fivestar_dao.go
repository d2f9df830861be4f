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

// 间隔查询分页上限
const (
	defaultIntervalLimit = 50
	maxIntervalLimit     = 500
)

// IntervalFilter 五星间隔查询条件
type IntervalFilter struct {
	UID       string
	GachaType int
	Page      int
	Limit     int
}

func (f *IntervalFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultIntervalLimit
	}
	if f.Limit > maxIntervalLimit {
		f.Limit = maxIntervalLimit
	}
}

// FiveStarDAO 五星间隔数据访问
type FiveStarDAO struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.HaloMetrics
}

// NewFiveStarDAO 创建五星间隔 DAO
func NewFiveStarDAO(db *postgres.Client, l logger.Logger, m *metrics.HaloMetrics) *FiveStarDAO {
	if l == nil {
		l = logger.Default()
	}
	return &FiveStarDAO{
		db:      db,
		logger:  l.Named("dao.fivestar"),
		metrics: m,
	}
}

// InsertIntervals 批量写入五星间隔，已存在的记录跳过，返回实际新增条数
func (d *FiveStarDAO) InsertIntervals(ctx context.Context, rows []*model.FiveStarInterval) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	builder := postgres.QueryBuilder.
		Insert("five_star_intervals").
		Columns("uid", "gacha_type", "five_star_record_id", "five_star_name", "pulls_between", "is_first", "record_time")
	for _, row := range rows {
		builder = builder.Values(row.UID, row.GachaType, row.FiveStarRecordID, row.FiveStarName, row.PullsBetween, row.IsFirst, row.RecordTime)
	}
	sql, args, err := builder.Suffix("ON CONFLICT (five_star_record_id) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert failed: %w", err)
	}

	defer d.observe("fivestar.insert", time.Now())
	inserted, err := d.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert intervals failed: %w", err)
	}
	d.logger.Debug("insert five-star intervals", "total", len(rows), "inserted", inserted)
	return inserted, nil
}

// Query 按条件分页查询五星间隔，按记录时间倒序返回，并附带总数
func (d *FiveStarDAO) Query(ctx context.Context, filter *IntervalFilter) ([]*model.FiveStarInterval, int64, error) {
	filter.normalize()

	where := squirrel.And{}
	if filter.UID != "" {
		where = append(where, squirrel.Eq{"uid": filter.UID})
	}
	if filter.GachaType != 0 {
		group := model.PoolGroup(filter.GachaType)
		if group == 301 {
			where = append(where, squirrel.Eq{"gacha_type": []int{301, 400}})
		} else {
			where = append(where, squirrel.Eq{"gacha_type": filter.GachaType})
		}
	}

	countSQL, countArgs, err := postgres.QueryBuilder.
		Select("COUNT(*)").From("five_star_intervals").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count failed: %w", err)
	}
	total, err := d.db.Count(ctx, countSQL, countArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("count intervals failed: %w", err)
	}

	sql, args, err := postgres.QueryBuilder.
		Select("id", "uid", "gacha_type", "five_star_record_id", "five_star_name", "pulls_between", "is_first", "record_time").
		From("five_star_intervals").
		Where(where).
		OrderBy("record_time DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64((filter.Page - 1) * filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query failed: %w", err)
	}

	defer d.observe("fivestar.query", time.Now())
	rows, err := postgres.QueryAll[model.FiveStarInterval](d.db, ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query intervals failed: %w", err)
	}
	return rows, total, nil
}

func (d *FiveStarDAO) observe(op string, start time.Time) {
	if d.metrics != nil {
		d.metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
