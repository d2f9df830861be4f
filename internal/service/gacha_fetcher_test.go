package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLinkParams() *GachaLinkParams {
	return &GachaLinkParams{
		AuthKey:    "test-key",
		AuthKeyVer: "1",
		SignType:   "2",
		GachaID:    "gid",
		Region:     "cn_gf01",
		InitType:   "301",
		Lang:       "zh-cn",
		DeviceType: "pc",
		GameBiz:    "hk4e_cn",
	}
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *HTTPLogFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fetcher, err := NewHTTPLogFetcher(&FetchConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	require.NoError(t, err)
	return fetcher
}

func TestFetchPageSuccess(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "test-key", query.Get("authkey"))
		assert.Equal(t, "2", query.Get("page"))
		assert.Equal(t, "20", query.Get("size"))
		assert.Equal(t, "1001", query.Get("end_id"))

		fmt.Fprint(w, `{"retcode":0,"message":"OK","data":{"page":"2","size":"20","list":[
			{"id":"1002","time":"2024-03-01 12:00:00","name":"甘雨","item_type":"角色","rank_type":"5","gacha_type":"301","uid":"100000001"},
			{"id":"1003","time":"2024-03-01 12:00:05","name":"弹弓","item_type":"武器","rank_type":"3","gacha_type":"301","uid":"100000001"}
		]}}`)
	})

	page, err := fetcher.FetchPage(context.Background(), testLinkParams(), 2, "1001")
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	first := page.Records[0]
	assert.Equal(t, "1002", first.ID)
	assert.Equal(t, "甘雨", first.Name)
	assert.Equal(t, 5, first.RankType)
	assert.Equal(t, 301, first.GachaType)
	assert.Equal(t, "100000001", first.UID)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), first.Time)
}

func TestFetchPageAuthExpired(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retcode":-101,"message":"authkey timeout","data":null}`)
	})

	_, err := fetcher.FetchPage(context.Background(), testLinkParams(), 1, "")
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestFetchPageAuthExpiredByMessage(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retcode":-110,"message":"authkey has expired","data":null}`)
	})

	_, err := fetcher.FetchPage(context.Background(), testLinkParams(), 1, "")
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestFetchPageUpstreamError(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retcode":-100,"message":"invalid request","data":null}`)
	})

	_, err := fetcher.FetchPage(context.Background(), testLinkParams(), 1, "")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, -100, upErr.Code)
	assert.Equal(t, "invalid request", upErr.Message)
}

func TestFetchPageTimeout(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	fetcher.client.Timeout = 20 * time.Millisecond

	_, err := fetcher.FetchPage(context.Background(), testLinkParams(), 1, "")

	var transient *TransientError
	assert.ErrorAs(t, err, &transient)
}

func TestFetchPageSkipsMalformedItems(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retcode":0,"message":"OK","data":{"page":"1","size":"20","list":[
			{"id":"1","time":"not-a-time","name":"坏数据","item_type":"角色","rank_type":"5","gacha_type":"301","uid":"1"},
			{"id":"2","time":"2024-03-01 12:00:00","name":"好数据","item_type":"角色","rank_type":"4","gacha_type":"301","uid":"1"}
		]}}`)
	})

	page, err := fetcher.FetchPage(context.Background(), testLinkParams(), 1, "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "2", page.Records[0].ID)
	// 原始数量和末尾 id 不受剔除影响
	assert.Equal(t, 2, page.RawCount)
	assert.Equal(t, "2", page.LastRawID)
}

func TestFetchPageMalformedLastItemKeepsCursor(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retcode":0,"message":"OK","data":{"page":"1","size":"20","list":[
			{"id":"1","time":"2024-03-01 12:00:00","name":"好数据","item_type":"角色","rank_type":"4","gacha_type":"301","uid":"1"},
			{"id":"2","time":"not-a-time","name":"坏数据","item_type":"角色","rank_type":"5","gacha_type":"301","uid":"1"}
		]}}`)
	})

	page, err := fetcher.FetchPage(context.Background(), testLinkParams(), 1, "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, 2, page.RawCount)
	assert.Equal(t, "2", page.LastRawID)
}
