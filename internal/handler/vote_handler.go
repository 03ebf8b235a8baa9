package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/votable/internal/middleware"
	"github.com/hitoshi/votable/internal/model"
)

// VoteServiceInterface は投票ハンドラーが必要とするサービスインターフェース。
type VoteServiceInterface interface {
	// SubmitVote は投票を登録し、同じユーザーの既存投票があれば上書きする。
	SubmitVote(ctx context.Context, votableID, userID, value string) (*model.Vote, error)
}

// VoteHandler は投票のHTTPハンドラー。
type VoteHandler struct {
	service VoteServiceInterface
}

// NewVoteHandler はVoteHandlerを生成する。
func NewVoteHandler(service VoteServiceInterface) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

// voteValue はJSON文字列、数値、真偽値のいずれも受け付け、文字列として保持する。
type voteValue string

// UnmarshalJSON は数値の場合は元の表記のまま、真偽値は "true" / "false" として取り込む。
func (v *voteValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case string:
		*v = voteValue(x)
	case json.Number:
		*v = voteValue(x.String())
	case bool:
		*v = voteValue(strconv.FormatBool(x))
	case nil:
		*v = ""
	default:
		return errors.New("value は文字列または数値で指定してください")
	}
	return nil
}

// submitVoteRequest は投票リクエストのボディ。
type submitVoteRequest struct {
	UserID string    `json:"userId"`
	Value  voteValue `json:"value"`
}

// SubmitVote は投票を登録する。
// userIdが省略された場合はX-User-IDヘッダーの値を使う。
// POST /api/votables/{id}/votes
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req submitVoteRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	userID := req.UserID
	if userID == "" {
		userID, _ = middleware.UserIDFromContext(r.Context())
	}
	if userID == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("userId は必須です"))
		return
	}

	vote, err := h.service.SubmitVote(r.Context(), chi.URLParam(r, "id"), userID, string(req.Value))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toVoteResponse(vote))
}
