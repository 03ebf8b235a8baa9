package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/votable/internal/metrics"
	"github.com/hitoshi/votable/internal/model"
	"github.com/hitoshi/votable/internal/repository"
)

// Service は集計のサービス層。結果はキャッシュせず、呼び出しごとに再計算する。
type Service struct {
	entityRepo  repository.EntityRepository
	votableRepo repository.VotableRepository
	voteRepo    repository.VoteRepository
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	entityRepo repository.EntityRepository,
	votableRepo repository.VotableRepository,
	voteRepo repository.VoteRepository,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		entityRepo:  entityRepo,
		votableRepo: votableRepo,
		voteRepo:    voteRepo,
		metrics:     collector,
		now:         time.Now,
	}
}

// ComputeStats はエンティティの全投票項目について集計結果を返す。
// エンティティが存在しない場合はNotFoundエラーを返す。
func (s *Service) ComputeStats(ctx context.Context, entityID string) (*model.EntityStats, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordStatsLatency(time.Since(start))
	}()

	if _, err := uuid.Parse(entityID); err != nil {
		return nil, model.NewEntityNotFoundError(entityID)
	}

	entity, err := s.entityRepo.FindByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("エンティティの取得に失敗しました: %w", err)
	}
	if entity == nil {
		return nil, model.NewEntityNotFoundError(entityID)
	}

	votables, err := s.votableRepo.ListByEntityID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("投票項目の取得に失敗しました: %w", err)
	}

	votes, err := s.voteRepo.ListByEntityID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("投票の取得に失敗しました: %w", err)
	}

	return Aggregate(entityID, votables, votes, s.now()), nil
}
