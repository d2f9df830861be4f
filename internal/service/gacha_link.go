package service

import (
	"net/url"
	"strings"

	"github.com/invinciblehaolong/halolab/internal/model"
)

// GachaLinkParams 从游戏导出链接中提取的查询参数，未出现的字段取默认值
type GachaLinkParams struct {
	AuthKey    string
	AuthKeyVer string
	SignType   string
	GachaID    string
	Region     string
	InitType   string
	Lang       string
	DeviceType string
	GameBiz    string
}

// PoolName 返回链接指向卡池的展示名
func (p *GachaLinkParams) PoolName() string {
	return model.PoolName(p.InitType)
}

// linkRequiredParams 缺一不可，没有就无法向上游发起请求
var linkRequiredParams = []string{"authkey", "gacha_id", "region"}

// ParseGachaLink 解析玩家粘贴的抽卡记录导出链接。
// 链接来自游戏内嵌页，路径和域名不做校验，只认查询串。
func ParseGachaLink(rawURL string) (*GachaLinkParams, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, &InvalidLinkError{Missing: append([]string(nil), linkRequiredParams...)}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &InvalidLinkError{Missing: append([]string(nil), linkRequiredParams...)}
	}
	query := u.Query()

	var missing []string
	for _, name := range linkRequiredParams {
		if query.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &InvalidLinkError{Missing: missing}
	}

	params := &GachaLinkParams{
		AuthKey:    query.Get("authkey"),
		AuthKeyVer: valueOrDefault(query, "authkey_ver", "1"),
		SignType:   valueOrDefault(query, "sign_type", "2"),
		GachaID:    query.Get("gacha_id"),
		Region:     query.Get("region"),
		InitType:   valueOrDefault(query, "init_type", "301"),
		Lang:       valueOrDefault(query, "lang", "zh-cn"),
		DeviceType: valueOrDefault(query, "device_type", "pc"),
		GameBiz:    valueOrDefault(query, "game_biz", "hk4e_cn"),
	}
	return params, nil
}

func valueOrDefault(query url.Values, key, def string) string {
	if v := query.Get(key); v != "" {
		return v
	}
	return def
}
