// Package model はドメインモデルを定義する。
package model

import "time"

// VotableStats は投票項目ごとの集計結果を表す。
// NUMBER/SLIDERでは数値サマリー、ENUM/BOOLではDistributionが設定される。
type VotableStats struct {
	VotableID  string
	Type       VotableType
	TotalVotes int

	// NUMBER / SLIDER
	Average float64
	Median  float64
	Min     float64
	Max     float64

	// ENUM / BOOL
	Distribution map[string]int
}

// IsNumeric は数値サマリーを持つ集計結果かどうかを返す。
func (s VotableStats) IsNumeric() bool {
	return s.Type.IsNumeric()
}

// EntityStats はエンティティ全体の集計結果を表す。
// UpdatedAtは保存値ではなく集計を実行した時刻。
type EntityStats struct {
	EntityID     string
	VotableStats []VotableStats
	UpdatedAt    time.Time
}
