// Package stats はエンティティ単位の投票集計を提供する。
package stats

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/votable/internal/model"
)

// Aggregate は投票項目と投票から集計結果を算出する。
// 結果の並びはvotablesの順序に従う。votesのうちvotablesに含まれない投票は無視する。
func Aggregate(entityID string, votables []*model.Votable, votes []*model.Vote, now time.Time) *model.EntityStats {
	byVotable := make(map[string][]string, len(votables))
	for _, v := range votes {
		byVotable[v.VotableID] = append(byVotable[v.VotableID], v.Value)
	}

	results := make([]model.VotableStats, 0, len(votables))
	for _, votable := range votables {
		values := byVotable[votable.ID]
		if votable.Type.IsNumeric() {
			results = append(results, numericStats(votable, values))
		} else {
			results = append(results, distributionStats(votable, values))
		}
	}

	return &model.EntityStats{
		EntityID:     entityID,
		VotableStats: results,
		UpdatedAt:    now,
	}
}

// distributionStats はENUM/BOOL向けに値ごとの出現回数を数える。
// 投票のない選択肢はキーを持たない。
func distributionStats(votable *model.Votable, values []string) model.VotableStats {
	dist := make(map[string]int)
	for _, v := range values {
		dist[v]++
	}
	return model.VotableStats{
		VotableID:    votable.ID,
		Type:         votable.Type,
		TotalVotes:   len(values),
		Distribution: dist,
	}
}

// numericStats はNUMBER/SLIDER向けに平均・中央値・最小・最大を算出する。
// 中央値は昇順に並べた値のfloor(n/2)番目（偶数件では上側の中央）。
// 有限の数値として解釈できない値（NaN、Infを含む）は集計から除外する。
func numericStats(votable *model.Votable, values []string) model.VotableStats {
	nums := make([]float64, 0, len(values))
	for _, raw := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			slog.Warn("数値でない投票値を集計から除外しました",
				slog.String("votable_id", votable.ID),
				slog.String("value", raw),
			)
			continue
		}
		nums = append(nums, f)
	}

	s := model.VotableStats{
		VotableID:  votable.ID,
		Type:       votable.Type,
		TotalVotes: len(nums),
	}
	if len(nums) == 0 {
		return s
	}

	sort.Float64s(nums)

	// 逐次平均で計算し、巨大な値の合計によるオーバーフローを避ける
	var avg float64
	for i, n := range nums {
		avg += (n - avg) / float64(i+1)
	}
	s.Average = avg
	s.Median = nums[len(nums)/2]
	s.Min = nums[0]
	s.Max = nums[len(nums)-1]
	return s
}
