package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/invinciblehaolong/halolab/internal/metrics"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/database/redis"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// RecordLister 按抽取先后提供全部抽卡记录
type RecordLister interface {
	ListOrdered(ctx context.Context) ([]*model.GachaRecord, error)
}

// IntervalStore 五星间隔结果持久化接口
type IntervalStore interface {
	InsertIntervals(ctx context.Context, rows []*model.FiveStarInterval) (int64, error)
}

// recomputeLockKey 重算期间持有的分布式锁
const recomputeLockKey = "lock:fivestar:recompute"

const recomputeLockTTL = 2 * time.Minute

// RecomputeResult 一次重算的汇总
type RecomputeResult struct {
	// IntervalCount 本次计算得到的五星间隔总数
	IntervalCount int `json:"interval_count"`
	// StoredCount 实际新写入的条数
	StoredCount int64 `json:"stored_count"`
}

// FiveStarService 五星间隔计算服务
type FiveStarService struct {
	records   RecordLister
	intervals IntervalStore
	cache     *redis.Client
	logger    logger.Logger
	metrics   *metrics.HaloMetrics
}

// NewFiveStarService 创建间隔计算服务，cache 为 nil 时不做并发互斥，
// 依赖唯一约束兜底
func NewFiveStarService(records RecordLister, intervals IntervalStore, cache *redis.Client, l logger.Logger, m *metrics.HaloMetrics) *FiveStarService {
	if l == nil {
		l = logger.Default()
	}
	return &FiveStarService{
		records:   records,
		intervals: intervals,
		cache:     cache,
		logger:    l.Named("service.fivestar"),
		metrics:   m,
	}
}

// Recompute 全量重算五星间隔并写入，已存在的记录跳过。
// 同一时刻只允许一个实例在算，抢不到锁返回 ErrRecomputeBusy。
func (s *FiveStarService) Recompute(ctx context.Context) (*RecomputeResult, error) {
	if s.cache != nil {
		lock := redis.NewLock(s.cache, recomputeLockKey, recomputeLockTTL)
		if err := lock.Lock(ctx); err != nil {
			if errors.Is(err, redis.ErrLockFailed) {
				s.countRecompute("busy")
				return nil, ErrRecomputeBusy
			}
			// Redis 不可用时不挡住重算本身
			s.logger.Warn("acquire recompute lock failed, continue without lock", "error", err)
		} else {
			defer func() {
				if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn("release recompute lock failed", "error", err)
				}
			}()
		}
	}

	start := time.Now()
	all, err := s.records.ListOrdered(ctx)
	if err != nil {
		s.countRecompute("error")
		return nil, err
	}

	rows := computeIntervals(all)
	stored, err := s.intervals.InsertIntervals(ctx, rows)
	if err != nil {
		s.countRecompute("error")
		return nil, err
	}

	s.countRecompute("ok")
	s.logger.Info("five-star recompute finished",
		"records", len(all),
		"intervals", len(rows),
		"stored", stored,
		"cost", time.Since(start).String(),
	)
	return &RecomputeResult{IntervalCount: len(rows), StoredCount: stored}, nil
}

func (s *FiveStarService) countRecompute(result string) {
	if s.metrics != nil {
		s.metrics.RecomputeTotal.WithLabelValues(result).Inc()
	}
}

// computeIntervals 按 (uid, 合并卡池) 分区计算每个五星之间的抽数。
// 301 和 400 共享保底，归入同一分区。分区内按时间升序、同秒按 id
// 升序排列，第一个五星的间隔从第 1 抽起算。
func computeIntervals(records []*model.GachaRecord) []*model.FiveStarInterval {
	type partitionKey struct {
		uid   string
		group int
	}
	partitions := make(map[partitionKey][]*model.GachaRecord)
	var order []partitionKey
	for _, r := range records {
		key := partitionKey{uid: r.UID, group: model.PoolGroup(r.GachaType)}
		if _, ok := partitions[key]; !ok {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], r)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].uid != order[j].uid {
			return order[i].uid < order[j].uid
		}
		return order[i].group < order[j].group
	})

	var out []*model.FiveStarInterval
	for _, key := range order {
		part := partitions[key]
		sort.SliceStable(part, func(i, j int) bool {
			if !part[i].Time.Equal(part[j].Time) {
				return part[i].Time.Before(part[j].Time)
			}
			return part[i].ID < part[j].ID
		})

		prevPos := 0
		for pos, r := range part {
			if r.RankType != model.RankFiveStar {
				continue
			}
			ordinal := pos + 1
			out = append(out, &model.FiveStarInterval{
				UID:              r.UID,
				GachaType:        r.GachaType,
				FiveStarRecordID: r.ID,
				FiveStarName:     r.Name,
				PullsBetween:     ordinal - prevPos,
				IsFirst:          prevPos == 0,
				RecordTime:       r.Time,
			})
			prevPos = ordinal
		}
	}
	return out
}
