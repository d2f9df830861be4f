package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGachaLink(t *testing.T) {
	raw := "https://webstatic.mihoyo.com/hk4e/event/e20190909gacha/index.html" +
		"?authkey=abc%2Fdef&gacha_id=b8fd0d8a6c&region=cn_gf01&init_type=302&lang=en-us"

	params, err := ParseGachaLink(raw)
	require.NoError(t, err)

	assert.Equal(t, "abc/def", params.AuthKey)
	assert.Equal(t, "b8fd0d8a6c", params.GachaID)
	assert.Equal(t, "cn_gf01", params.Region)
	assert.Equal(t, "302", params.InitType)
	assert.Equal(t, "en-us", params.Lang)
	assert.Equal(t, "武器祈愿", params.PoolName())
}

func TestParseGachaLinkDefaults(t *testing.T) {
	params, err := ParseGachaLink("https://example.com/?authkey=k&gacha_id=g&region=cn_gf01")
	require.NoError(t, err)

	assert.Equal(t, "1", params.AuthKeyVer)
	assert.Equal(t, "2", params.SignType)
	assert.Equal(t, "301", params.InitType)
	assert.Equal(t, "zh-cn", params.Lang)
	assert.Equal(t, "pc", params.DeviceType)
	assert.Equal(t, "hk4e_cn", params.GameBiz)
}

func TestParseGachaLinkMissingParams(t *testing.T) {
	_, err := ParseGachaLink("https://example.com/?authkey=k")

	var linkErr *InvalidLinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, []string{"gacha_id", "region"}, linkErr.Missing)
}

func TestParseGachaLinkEmpty(t *testing.T) {
	_, err := ParseGachaLink("   ")

	var linkErr *InvalidLinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, []string{"authkey", "gacha_id", "region"}, linkErr.Missing)
}
