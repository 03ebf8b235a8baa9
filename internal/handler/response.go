package handler

import (
	"time"

	"github.com/hitoshi/votable/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// entityResponse はエンティティのAPIレスポンス。
type entityResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// entityDetailResponse は投票項目と作成者を含むエンティティ詳細のAPIレスポンス。
// 作成者が存在しない場合userはnullになる。
type entityDetailResponse struct {
	entityResponse
	Votables []votableResponse `json:"votables"`
	User     *userResponse     `json:"user"`
}

// votableResponse は投票項目のAPIレスポンス。
type votableResponse struct {
	ID        string              `json:"id"`
	EntityID  string              `json:"entityId"`
	Type      string              `json:"type"`
	Config    model.VotableConfig `json:"config"`
	Label     string              `json:"label"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// votableWithUserVoteResponse はユーザーの現在の投票値を含む投票項目のAPIレスポンス。
type votableWithUserVoteResponse struct {
	votableResponse
	UserVote *string `json:"userVote"`
}

// voteResponse は投票のAPIレスポンス。
type voteResponse struct {
	ID        string    `json:"id"`
	VotableID string    `json:"votableId"`
	UserID    string    `json:"userId"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// votableStatsResponse は投票項目ごとの集計結果。
// 数値サマリーとdistributionは種別に応じてどちらか一方のみ出力する。
// 投票0件のENUM/BOOLでもdistributionは空オブジェクトとして出力する。
type votableStatsResponse struct {
	VotableID    string          `json:"votableId"`
	Type         string          `json:"type"`
	TotalVotes   int             `json:"totalVotes"`
	Average      *float64        `json:"average,omitempty"`
	Median       *float64        `json:"median,omitempty"`
	Min          *float64        `json:"min,omitempty"`
	Max          *float64        `json:"max,omitempty"`
	Distribution *map[string]int `json:"distribution,omitempty"`
}

// entityStatsResponse はエンティティ全体の集計結果のAPIレスポンス。
type entityStatsResponse struct {
	EntityID     string                 `json:"entityId"`
	VotableStats []votableStatsResponse `json:"votableStats"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// --- 変換関数 ---

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toEntityResponse(e *model.Entity) entityResponse {
	return entityResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		Title:       e.Title,
		Description: e.Description,
		UserID:      e.UserID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEntityDetailResponse(d *model.EntityWithDetails) entityDetailResponse {
	resp := entityDetailResponse{
		entityResponse: toEntityResponse(&d.Entity),
		Votables:       toVotableResponses(d.Votables),
	}
	if d.Creator != nil {
		u := toUserResponse(d.Creator)
		resp.User = &u
	}
	return resp
}

func toVotableResponse(v *model.Votable) votableResponse {
	return votableResponse{
		ID:        v.ID,
		EntityID:  v.EntityID,
		Type:      string(v.Type),
		Config:    v.Config,
		Label:     v.Label,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// toVotableResponses は空でもnilではなく空配列を返す。
func toVotableResponses(votables []*model.Votable) []votableResponse {
	resp := make([]votableResponse, 0, len(votables))
	for _, v := range votables {
		resp = append(resp, toVotableResponse(v))
	}
	return resp
}

func toVoteResponse(v *model.Vote) voteResponse {
	return voteResponse{
		ID:        v.ID,
		VotableID: v.VotableID,
		UserID:    v.UserID,
		Value:     v.Value,
		CreatedAt: v.CreatedAt,
	}
}

func toEntityStatsResponse(s *model.EntityStats) entityStatsResponse {
	items := make([]votableStatsResponse, 0, len(s.VotableStats))
	for _, vs := range s.VotableStats {
		item := votableStatsResponse{
			VotableID:  vs.VotableID,
			Type:       string(vs.Type),
			TotalVotes: vs.TotalVotes,
		}
		if vs.IsNumeric() {
			avg, median, lo, hi := vs.Average, vs.Median, vs.Min, vs.Max
			item.Average = &avg
			item.Median = &median
			item.Min = &lo
			item.Max = &hi
		} else {
			dist := vs.Distribution
			if dist == nil {
				dist = map[string]int{}
			}
			item.Distribution = &dist
		}
		items = append(items, item)
	}
	return entityStatsResponse{
		EntityID:     s.EntityID,
		VotableStats: items,
		UpdatedAt:    s.UpdatedAt,
	}
}
