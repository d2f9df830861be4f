package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invinciblehaolong/halolab/internal/dao"
	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/web"
)

type stubIntervalQuerier struct {
	gotFilter *dao.IntervalFilter
	rows      []*model.FiveStarInterval
}

func (q *stubIntervalQuerier) Query(ctx context.Context, filter *dao.IntervalFilter) ([]*model.FiveStarInterval, int64, error) {
	q.gotFilter = filter
	return q.rows, int64(len(q.rows)), nil
}

func newFiveStarTestRouter(querier IntervalQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewFiveStarHandler(nil, querier, nil).Register(router.Group("/api"))
	return router
}

func TestQueryIntervals(t *testing.T) {
	querier := &stubIntervalQuerier{rows: []*model.FiveStarInterval{
		{ID: 1, UID: "100000001", GachaType: 301, PullsBetween: 74},
	}}
	router := newFiveStarTestRouter(querier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/five-star/intervals?uid=100000001&gacha_type=301", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp web.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)

	require.NotNil(t, querier.gotFilter)
	assert.Equal(t, "100000001", querier.gotFilter.UID)
	assert.Equal(t, 301, querier.gotFilter.GachaType)
}

func TestQueryIntervalsLenientPagination(t *testing.T) {
	querier := &stubIntervalQuerier{}
	router := newFiveStarTestRouter(querier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/five-star/intervals?page=abc&limit=", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp web.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)

	require.NotNil(t, querier.gotFilter)
	assert.Equal(t, 0, querier.gotFilter.Page)
	assert.Equal(t, 0, querier.gotFilter.Limit)
}
