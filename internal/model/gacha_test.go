package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolGroup(t *testing.T) {
	// 301 和 400 合并为同一分组
	assert.Equal(t, 301, PoolGroup(301))
	assert.Equal(t, 301, PoolGroup(400))

	// 其余卡池各自独立
	assert.Equal(t, 302, PoolGroup(302))
	assert.Equal(t, 200, PoolGroup(200))
	assert.Equal(t, 100, PoolGroup(100))
	assert.Equal(t, 500, PoolGroup(500))
}

func TestPoolName(t *testing.T) {
	assert.Equal(t, "角色祈愿&角色祈愿2", PoolName("301"))
	assert.Equal(t, "武器祈愿", PoolName("302"))
	assert.Equal(t, "编年祈愿", PoolName("500"))
	assert.Equal(t, "未知祈愿", PoolName("999"))
	assert.Equal(t, "未知祈愿", PoolName(""))
}
