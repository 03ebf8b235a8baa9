package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/votable/internal/entity"
	"github.com/hitoshi/votable/internal/middleware"
	"github.com/hitoshi/votable/internal/model"
)

// EntityServiceInterface はエンティティハンドラーが必要とするサービスインターフェース。
type EntityServiceInterface interface {
	// CreateEntity はエンティティと投票項目を作成する。
	CreateEntity(ctx context.Context, input entity.CreateEntityInput) (*model.EntityWithDetails, error)
	// CreateVotables は既存エンティティに投票項目を追加する。
	CreateVotables(ctx context.Context, entityID string, inputs []entity.VotableInput) ([]*model.Votable, error)
	// GetEntity はエンティティを投票項目と作成者つきで取得する。
	GetEntity(ctx context.Context, entityID string) (*model.EntityWithDetails, error)
	// ListEntities は全エンティティを新しい順に返す。
	ListEntities(ctx context.Context) ([]*model.Entity, error)
	// GetVotesForUser はエンティティに対するユーザーの投票を返す。
	GetVotesForUser(ctx context.Context, entityID, userID string) ([]*model.Vote, error)
	// GetVotablesWithUserVotes は投票項目をユーザーの現在の投票値とあわせて返す。
	GetVotablesWithUserVotes(ctx context.Context, entityID, userID string) ([]model.VotableWithUserVote, error)
}

// EntityHandler はエンティティと投票項目のHTTPハンドラー。
type EntityHandler struct {
	service EntityServiceInterface
}

// NewEntityHandler はEntityHandlerを生成する。
func NewEntityHandler(service EntityServiceInterface) *EntityHandler {
	return &EntityHandler{
		service: service,
	}
}

// votableRequest は投票項目作成リクエストの1要素。
type votableRequest struct {
	Type   string          `json:"type"`
	Label  string          `json:"label"`
	Config json.RawMessage `json:"config"`
}

// createEntityRequest はエンティティ作成リクエストのボディ。
type createEntityRequest struct {
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	UserID      string           `json:"userId"`
	Votables    []votableRequest `json:"votables"`
}

// createVotablesRequest は投票項目一括作成リクエストのボディ。
type createVotablesRequest struct {
	Votables []votableRequest `json:"votables"`
}

// ListEntities はエンティティ一覧を返す。
// GET /api/entities
func (h *EntityHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.ListEntities(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]entityResponse, 0, len(entities))
	for _, e := range entities {
		resp = append(resp, toEntityResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateEntity はエンティティを投票項目とあわせて作成する。
// userIdが省略された場合はX-User-IDヘッダーの値を作成者とする。
// POST /api/entities
func (h *EntityHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req createEntityRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	userID := req.UserID
	if userID == "" {
		userID, _ = middleware.UserIDFromContext(r.Context())
	}

	detail, err := h.service.CreateEntity(r.Context(), entity.CreateEntityInput{
		Type:        model.EntityType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
		Votables:    toVotableInputs(req.Votables),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntityDetailResponse(detail))
}

// GetEntity はエンティティ詳細を取得する。
// GET /api/entities/{id}
func (h *EntityHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetEntity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntityDetailResponse(detail))
}

// CreateVotables はエンティティに投票項目を追加する。
// POST /api/entities/{id}/votables
func (h *EntityHandler) CreateVotables(w http.ResponseWriter, r *http.Request) {
	var req createVotablesRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	votables, err := h.service.CreateVotables(r.Context(), chi.URLParam(r, "id"), toVotableInputs(req.Votables))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVotableResponses(votables))
}

// ListVotables は投票項目をユーザーの現在の投票値とあわせて返す。
// GET /api/entities/{id}/votables?userId=
func (h *EntityHandler) ListVotables(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("userId は必須です"))
		return
	}

	votables, err := h.service.GetVotablesWithUserVotes(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]votableWithUserVoteResponse, 0, len(votables))
	for i := range votables {
		resp = append(resp, votableWithUserVoteResponse{
			votableResponse: toVotableResponse(&votables[i].Votable),
			UserVote:        votables[i].UserVote,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListVotesForUser はエンティティに対するユーザーの投票一覧を返す。
// GET /api/entities/{id}/votes?userId=
func (h *EntityHandler) ListVotesForUser(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("userId は必須です"))
		return
	}

	votes, err := h.service.GetVotesForUser(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]voteResponse, 0, len(votes))
	for _, v := range votes {
		resp = append(resp, toVoteResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toVotableInputs(reqs []votableRequest) []entity.VotableInput {
	inputs := make([]entity.VotableInput, 0, len(reqs))
	for _, v := range reqs {
		inputs = append(inputs, entity.VotableInput{
			Type:   model.VotableType(v.Type),
			Label:  v.Label,
			Config: v.Config,
		})
	}
	return inputs
}
