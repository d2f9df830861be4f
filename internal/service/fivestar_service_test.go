package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invinciblehaolong/halolab/internal/model"
)

func recordAt(id string, uid string, gachaType, rank int, offset int) *model.GachaRecord {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &model.GachaRecord{
		ID:        id,
		Time:      base.Add(time.Duration(offset) * time.Minute),
		Name:      "item-" + id,
		ItemType:  "角色",
		RankType:  rank,
		GachaType: gachaType,
		UID:       uid,
	}
}

func TestComputeIntervalsBasic(t *testing.T) {
	// 抽取序列 3,4,5,3,5,4,5：五星分别落在第 3、5、7 抽
	ranks := []int{3, 4, 5, 3, 5, 4, 5}
	var records []*model.GachaRecord
	for i, rank := range ranks {
		records = append(records, recordAt(string(rune('a'+i)), "1", 301, rank, i))
	}

	out := computeIntervals(records)
	require.Len(t, out, 3)

	assert.Equal(t, 3, out[0].PullsBetween)
	assert.True(t, out[0].IsFirst)
	assert.Equal(t, 2, out[1].PullsBetween)
	assert.False(t, out[1].IsFirst)
	assert.Equal(t, 2, out[2].PullsBetween)
	assert.False(t, out[2].IsFirst)
}

func TestComputeIntervalsMergesCharacterPools(t *testing.T) {
	// 301 和 400 共享保底：400 池的抽数要计入 301 池的间隔
	records := []*model.GachaRecord{
		recordAt("1", "1", 301, 3, 0),
		recordAt("2", "1", 400, 3, 1),
		recordAt("3", "1", 301, 5, 2),
	}

	out := computeIntervals(records)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].PullsBetween)
	assert.True(t, out[0].IsFirst)
	// 原始卡池编号保留在结果里
	assert.Equal(t, 301, out[0].GachaType)
}

func TestComputeIntervalsSeparatesWeaponPool(t *testing.T) {
	records := []*model.GachaRecord{
		recordAt("1", "1", 301, 3, 0),
		recordAt("2", "1", 302, 3, 1),
		recordAt("3", "1", 302, 5, 2),
	}

	out := computeIntervals(records)
	require.Len(t, out, 1)
	// 302 池单独计数，301 池的一抽不计入
	assert.Equal(t, 2, out[0].PullsBetween)
}

func TestComputeIntervalsSeparatesUsers(t *testing.T) {
	records := []*model.GachaRecord{
		recordAt("1", "1", 301, 3, 0),
		recordAt("2", "2", 301, 5, 1),
		recordAt("3", "1", 301, 5, 2),
	}

	out := computeIntervals(records)
	require.Len(t, out, 2)
	for _, row := range out {
		if row.UID == "1" {
			assert.Equal(t, 2, row.PullsBetween)
		} else {
			assert.Equal(t, 1, row.PullsBetween)
		}
		assert.True(t, row.IsFirst)
	}
}

func TestComputeIntervalsTieBreakByID(t *testing.T) {
	// 同一秒两条记录，按 id 升序定先后
	ts := 5
	records := []*model.GachaRecord{
		recordAt("20", "1", 301, 5, ts),
		recordAt("10", "1", 301, 3, ts),
	}

	out := computeIntervals(records)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].PullsBetween)
}

func TestComputeIntervalsNoFiveStars(t *testing.T) {
	records := []*model.GachaRecord{
		recordAt("1", "1", 301, 3, 0),
		recordAt("2", "1", 301, 4, 1),
	}
	assert.Empty(t, computeIntervals(records))
}

func TestComputeIntervalsEmpty(t *testing.T) {
	assert.Empty(t, computeIntervals(nil))
}

type fakeRecordLister struct {
	records []*model.GachaRecord
	err     error
}

func (f *fakeRecordLister) ListOrdered(ctx context.Context) ([]*model.GachaRecord, error) {
	return f.records, f.err
}

type fakeIntervalStore struct {
	rows   []*model.FiveStarInterval
	stored int64
	err    error
}

func (f *fakeIntervalStore) InsertIntervals(ctx context.Context, rows []*model.FiveStarInterval) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.rows = rows
	if f.stored > 0 {
		return f.stored, nil
	}
	return int64(len(rows)), nil
}

func TestRecompute(t *testing.T) {
	lister := &fakeRecordLister{records: []*model.GachaRecord{
		recordAt("1", "1", 301, 3, 0),
		recordAt("2", "1", 301, 5, 1),
	}}
	store := &fakeIntervalStore{}
	svc := NewFiveStarService(lister, store, nil, nil, nil)

	result, err := svc.Recompute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.IntervalCount)
	assert.Equal(t, int64(1), result.StoredCount)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "2", store.rows[0].FiveStarRecordID)
	assert.Equal(t, "item-2", store.rows[0].FiveStarName)
}

func TestRecomputeIdempotentStore(t *testing.T) {
	lister := &fakeRecordLister{records: []*model.GachaRecord{
		recordAt("1", "1", 301, 5, 0),
		recordAt("2", "1", 301, 5, 1),
	}}
	store := &fakeIntervalStore{stored: 1} // 其中一条已存在
	svc := NewFiveStarService(lister, store, nil, nil, nil)

	result, err := svc.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.IntervalCount)
	assert.Equal(t, int64(1), result.StoredCount)
}
