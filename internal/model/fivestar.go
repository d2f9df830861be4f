package model

import "time"

// FiveStarInterval 一条五星间隔记录
// 每条五星祈愿记录只计算一次，five_star_record_id 上有唯一约束
type FiveStarInterval struct {
	ID               int64     `db:"id" json:"id"`
	UID              string    `db:"uid" json:"uid"`
	GachaType        int       `db:"gacha_type" json:"gacha_type"` // 原始卡池类型，展示用
	FiveStarRecordID string    `db:"five_star_record_id" json:"five_star_record_id"`
	FiveStarName     string    `db:"five_star_name" json:"five_star_name"`
	PullsBetween     int       `db:"pulls_between" json:"pulls_between"` // 与上一个五星的间隔抽数
	IsFirst          bool      `db:"is_first" json:"is_first"`           // 是否为该分组内第一个五星
	RecordTime       time.Time `db:"record_time" json:"record_time"`
}
