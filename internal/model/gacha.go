package model

import "time"

// 五星稀有度
const RankFiveStar = 5

// GachaRecord 一条祈愿记录（上游抽卡日志条目）
// id 由上游分配，全局唯一，同一条记录重复抓取时以首次入库为准
type GachaRecord struct {
	ID        string    `db:"id" json:"id"`
	Time      time.Time `db:"time" json:"time"`
	Name      string    `db:"name" json:"name"`
	ItemType  string    `db:"item_type" json:"item_type"`
	RankType  int       `db:"rank_type" json:"rank_type"`
	GachaType int       `db:"gacha_type" json:"gacha_type"`
	UID       string    `db:"uid" json:"uid"`
}

// PoolGroup 返回用于保底计数的卡池分组
// 301 和 400 是同一卡池在版本中期更换的标识，保底连续，合并为 301 计算
func PoolGroup(gachaType int) int {
	if gachaType == 301 || gachaType == 400 {
		return 301
	}
	return gachaType
}

// poolNames 卡池显示名称
var poolNames = map[string]string{
	"100": "新手祈愿",
	"200": "常驻祈愿",
	"301": "角色祈愿&角色祈愿2",
	"400": "角色祈愿&角色祈愿2",
	"302": "武器祈愿",
	"500": "编年祈愿",
}

// PoolName 返回卡池显示名称，未知卡池返回 "未知祈愿"
func PoolName(initType string) string {
	if name, ok := poolNames[initType]; ok {
		return name
	}
	return "未知祈愿"
}
