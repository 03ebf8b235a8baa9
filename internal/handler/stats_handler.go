package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/votable/internal/model"
)

// StatsServiceInterface は集計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	// ComputeStats はエンティティの全投票項目の集計結果をリクエスト時点で計算する。
	ComputeStats(ctx context.Context, entityID string) (*model.EntityStats, error)
}

// StatsHandler は集計のHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// GetStats はエンティティの集計結果を返す。結果はキャッシュしない。
// GET /api/entities/{id}/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ComputeStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntityStatsResponse(stats))
}
