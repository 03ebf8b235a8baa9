package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/votable/internal/model"
)

// mockStatsService はStatsServiceInterfaceのモック実装。
type mockStatsService struct {
	computeStatsFn func(ctx context.Context, entityID string) (*model.EntityStats, error)
}

func (m *mockStatsService) ComputeStats(ctx context.Context, entityID string) (*model.EntityStats, error) {
	if m.computeStatsFn != nil {
		return m.computeStatsFn(ctx, entityID)
	}
	return &model.EntityStats{EntityID: entityID}, nil
}

func TestStatsHandler_GetStats_NumericAndDistribution(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockStatsService{
		computeStatsFn: func(ctx context.Context, entityID string) (*model.EntityStats, error) {
			return &model.EntityStats{
				EntityID: entityID,
				VotableStats: []model.VotableStats{
					{VotableID: "v1", Type: model.VotableTypeNumber, TotalVotes: 2, Average: 5, Median: 7, Min: 3, Max: 7},
					{VotableID: "v2", Type: model.VotableTypeBool, TotalVotes: 3, Distribution: map[string]int{"true": 2, "false": 1}},
					{VotableID: "v3", Type: model.VotableTypeEnum, TotalVotes: 0, Distribution: map[string]int{}},
				},
				UpdatedAt: now,
			}, nil
		},
	}
	h := NewStatsHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/entities/e1/stats", nil)
	req = withChiURLParam(req, "id", "e1")
	w := httptest.NewRecorder()

	h.GetStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		EntityID     string           `json:"entityId"`
		VotableStats []map[string]any `json:"votableStats"`
		UpdatedAt    time.Time        `json:"updatedAt"`
	}
	decodeJSON(t, w, &resp)

	if resp.EntityID != "e1" || !resp.UpdatedAt.Equal(now) {
		t.Errorf("entityId = %q, updatedAt = %v", resp.EntityID, resp.UpdatedAt)
	}
	if len(resp.VotableStats) != 3 {
		t.Fatalf("len(votableStats) = %d, want 3", len(resp.VotableStats))
	}

	num := resp.VotableStats[0]
	if num["average"] != float64(5) || num["median"] != float64(7) || num["min"] != float64(3) || num["max"] != float64(7) {
		t.Errorf("numeric stats = %v", num)
	}
	if _, ok := num["distribution"]; ok {
		t.Error("numeric stats should not include distribution")
	}

	dist, ok := resp.VotableStats[1]["distribution"].(map[string]any)
	if !ok || dist["true"] != float64(2) || dist["false"] != float64(1) {
		t.Errorf("distribution = %v", resp.VotableStats[1]["distribution"])
	}
	if _, ok := resp.VotableStats[1]["average"]; ok {
		t.Error("distribution stats should not include average")
	}

	empty, ok := resp.VotableStats[2]["distribution"].(map[string]any)
	if !ok || len(empty) != 0 {
		t.Errorf("empty distribution = %v, want {}", resp.VotableStats[2]["distribution"])
	}
}

func TestStatsHandler_GetStats_ZeroVoteNumeric_ReportsZeros(t *testing.T) {
	svc := &mockStatsService{
		computeStatsFn: func(ctx context.Context, entityID string) (*model.EntityStats, error) {
			return &model.EntityStats{
				EntityID:     entityID,
				VotableStats: []model.VotableStats{{VotableID: "v1", Type: model.VotableTypeSlider}},
			}, nil
		},
	}
	h := NewStatsHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/entities/e1/stats", nil)
	req = withChiURLParam(req, "id", "e1")
	w := httptest.NewRecorder()

	h.GetStats(w, req)

	var resp struct {
		VotableStats []map[string]any `json:"votableStats"`
	}
	decodeJSON(t, w, &resp)
	s := resp.VotableStats[0]
	for _, key := range []string{"average", "median", "min", "max", "totalVotes"} {
		if s[key] != float64(0) {
			t.Errorf("%s = %v, want 0", key, s[key])
		}
	}
}

func TestStatsHandler_GetStats_EntityNotFound(t *testing.T) {
	svc := &mockStatsService{
		computeStatsFn: func(ctx context.Context, entityID string) (*model.EntityStats, error) {
			return nil, model.NewEntityNotFoundError(entityID)
		},
	}
	h := NewStatsHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/entities/missing/stats", nil)
	req = withChiURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.GetStats(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
