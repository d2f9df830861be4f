package service

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invinciblehaolong/halolab/internal/model"
)

type fakeFetcher struct {
	pages   map[int]*GachaPage
	failAt  int
	failErr error
	calls   []string // 每次调用的 end_id，用于断言游标推进
}

func (f *fakeFetcher) FetchPage(ctx context.Context, params *GachaLinkParams, page int, endID string) (*GachaPage, error) {
	f.calls = append(f.calls, endID)
	if f.failAt > 0 && page >= f.failAt {
		return nil, f.failErr
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &GachaPage{}, nil
}

type fakeStore struct {
	inserted  []*model.GachaRecord
	newRows   int64
	returnErr error
}

func (s *fakeStore) BulkInsert(ctx context.Context, records []*model.GachaRecord) (int64, error) {
	if s.returnErr != nil {
		return 0, s.returnErr
	}
	s.inserted = records
	if s.newRows > 0 {
		return s.newRows, nil
	}
	return int64(len(records)), nil
}

// newPage 按完好记录构造一页，原始数量与解析数量一致
func newPage(records []*model.GachaRecord) *GachaPage {
	p := &GachaPage{Records: records, RawCount: len(records)}
	if n := len(records); n > 0 {
		p.LastRawID = records[n-1].ID
	}
	return p
}

func makeRecords(start, n int) []*model.GachaRecord {
	out := make([]*model.GachaRecord, 0, n)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := start + i
		out = append(out, &model.GachaRecord{
			ID:        strconv.Itoa(id),
			Time:      base.Add(time.Duration(id) * time.Second),
			Name:      "item",
			ItemType:  "武器",
			RankType:  3,
			GachaType: 301,
			UID:       "100000001",
		})
	}
	return out
}

func newTestGachaService(t *testing.T, fetcher PageFetcher, store GachaStore, maxPages int) *GachaService {
	t.Helper()
	svc, err := NewGachaService(&GachaConfig{
		MaxPages:     maxPages,
		PageInterval: time.Millisecond,
	}, fetcher, store, nil, nil)
	require.NoError(t, err)
	return svc
}

const testLink = "https://example.com/?authkey=k&gacha_id=g&region=cn_gf01&init_type=301"

func TestIngestPaginatesUntilShortPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]*GachaPage{
		1: newPage(makeRecords(1000, 20)),
		2: newPage(makeRecords(1020, 20)),
		3: newPage(makeRecords(1040, 5)),
	}}
	store := &fakeStore{}
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 0)
	require.NoError(t, err)

	assert.Equal(t, 45, result.UniqueCount)
	assert.Equal(t, int64(45), result.StoredCount)
	assert.Equal(t, "100000001", result.UID)
	assert.Equal(t, "角色祈愿&角色祈愿2", result.PoolName)
	assert.False(t, result.Truncated)

	// 游标是前一页最后一条记录的 id
	assert.Equal(t, []string{"0", "1019", "1039"}, fetcher.calls)
	assert.Len(t, store.inserted, 45)
}

func TestIngestDeduplicatesAcrossPages(t *testing.T) {
	page1 := makeRecords(1000, 20)
	page2 := append(makeRecords(1015, 5), makeRecords(1020, 5)...) // 前 5 条和上一页重叠
	fetcher := &fakeFetcher{pages: map[int]*GachaPage{
		1: newPage(page1),
		2: newPage(page2),
	}}
	store := &fakeStore{}
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 0)
	require.NoError(t, err)

	assert.Equal(t, 25, result.UniqueCount)
	assert.Len(t, store.inserted, 25)
}

func TestIngestTruncatedAtMaxPages(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]*GachaPage{
		1: newPage(makeRecords(1000, 20)),
		2: newPage(makeRecords(1020, 20)),
		3: newPage(makeRecords(1040, 20)),
	}}
	store := &fakeStore{}
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 2)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Equal(t, 40, result.UniqueCount)
	assert.Len(t, fetcher.calls, 2)
}

func TestIngestReturnsPartialOnFetchError(t *testing.T) {
	fetcher := &fakeFetcher{
		pages:   map[int]*GachaPage{1: newPage(makeRecords(1000, 20))},
		failAt:  2,
		failErr: &TransientError{Op: "fetch page", Err: context.DeadlineExceeded},
	}
	store := &fakeStore{}
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 0)
	require.Error(t, err)

	var transient *TransientError
	assert.ErrorAs(t, err, &transient)
	assert.Equal(t, 20, result.UniqueCount)
	assert.Equal(t, int64(0), result.StoredCount)
	assert.Nil(t, store.inserted)
}

func TestIngestInvalidLink(t *testing.T) {
	svc := newTestGachaService(t, &fakeFetcher{}, &fakeStore{}, 100)

	_, err := svc.Ingest(context.Background(), "https://example.com/?authkey=k", 0)

	var linkErr *InvalidLinkError
	assert.ErrorAs(t, err, &linkErr)
}

func TestIngestStoreFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]*GachaPage{
		1: newPage(makeRecords(1000, 3)),
	}}
	store := &fakeStore{returnErr: fmt.Errorf("connection refused")}
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 0)
	require.Error(t, err)
	assert.Equal(t, 3, result.UniqueCount)
	assert.Equal(t, int64(0), result.StoredCount)
}

func TestIngestCountsDuplicatesSeparately(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int]*GachaPage{
		1: newPage(makeRecords(1000, 10)),
	}}
	store := &fakeStore{newRows: 4} // 数据库里已有 6 条
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, result.UniqueCount)
	assert.Equal(t, int64(4), result.StoredCount)
}

func TestIngestEmptyFirstPage(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &fakeStore{}
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, result.UniqueCount)
	assert.Equal(t, int64(0), result.StoredCount)
	assert.Empty(t, result.UID)
	assert.False(t, result.Truncated)
	assert.Empty(t, store.inserted)
	assert.Len(t, fetcher.calls, 1)
}

func TestIngestContinuesPastDroppedItems(t *testing.T) {
	// 第一页上游给了满 20 条，其中 1 条坏数据被剔除：
	// 翻页判定和游标都要按原始数据走，不能提前收尾
	page1 := &GachaPage{
		Records:   makeRecords(1000, 19),
		RawCount:  20,
		LastRawID: "1019",
	}
	fetcher := &fakeFetcher{pages: map[int]*GachaPage{
		1: page1,
		2: newPage(makeRecords(1020, 5)),
	}}
	store := &fakeStore{}
	svc := newTestGachaService(t, fetcher, store, 100)

	result, err := svc.Ingest(context.Background(), testLink, 0)
	require.NoError(t, err)

	assert.Equal(t, 24, result.UniqueCount)
	assert.Equal(t, []string{"0", "1019"}, fetcher.calls)
}
