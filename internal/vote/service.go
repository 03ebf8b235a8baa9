// Package vote は投票のアップサートロジックを提供する。
package vote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/votable/internal/metrics"
	"github.com/hitoshi/votable/internal/model"
	"github.com/hitoshi/votable/internal/repository"
)

// Service は投票のサービス層。
// (votable, user) ごとに投票を1件に保ち、再投票時は値を上書きする。
type Service struct {
	voteRepo    repository.VoteRepository
	votableRepo repository.VotableRepository
	userRepo    repository.UserRepository
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	voteRepo repository.VoteRepository,
	votableRepo repository.VotableRepository,
	userRepo repository.UserRepository,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		voteRepo:    voteRepo,
		votableRepo: votableRepo,
		userRepo:    userRepo,
		metrics:     collector,
		now:         time.Now,
	}
}

// SubmitVote はユーザーの投票を記録する。
// 既存の投票があれば値とcreated_atを上書きし（IDは維持）、なければ新規作成する。
// 同じ値での再投票もエラーにはならない。値の範囲や選択肢は検証しない。
func (s *Service) SubmitVote(ctx context.Context, votableID, userID, value string) (*model.Vote, error) {
	if _, err := uuid.Parse(votableID); err != nil {
		return nil, model.NewVotableNotFoundError(votableID)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	votable, err := s.votableRepo.FindByID(ctx, votableID)
	if err != nil {
		return nil, fmt.Errorf("投票項目の取得に失敗しました: %w", err)
	}
	if votable == nil {
		return nil, model.NewVotableNotFoundError(votableID)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	existing, err := s.voteRepo.FindByVotableAndUser(ctx, votableID, userID)
	if err != nil {
		return nil, fmt.Errorf("投票の取得に失敗しました: %w", err)
	}

	now := s.now()

	if existing != nil {
		existing.Value = value
		existing.CreatedAt = now
		if err := s.voteRepo.UpdateValue(ctx, existing); err != nil {
			return nil, fmt.Errorf("投票の更新に失敗しました: %w", err)
		}

		s.metrics.RecordVoteSubmitted(metrics.ResultUpdated)
		slog.Info("投票を更新しました",
			slog.String("vote_id", existing.ID),
			slog.String("votable_id", votableID),
			slog.String("user_id", userID),
		)
		return existing, nil
	}

	vote := &model.Vote{
		ID:        uuid.NewString(),
		VotableID: votableID,
		UserID:    userID,
		Value:     value,
		CreatedAt: now,
	}
	if err := s.voteRepo.Create(ctx, vote); err != nil {
		return nil, fmt.Errorf("投票の作成に失敗しました: %w", err)
	}

	s.metrics.RecordVoteSubmitted(metrics.ResultInserted)
	slog.Info("投票を作成しました",
		slog.String("vote_id", vote.ID),
		slog.String("votable_id", votableID),
		slog.String("user_id", userID),
	)
	return vote, nil
}
