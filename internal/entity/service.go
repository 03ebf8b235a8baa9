// Package entity はエンティティと投票項目の管理ロジックを提供する。
package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/votable/internal/metrics"
	"github.com/hitoshi/votable/internal/model"
	"github.com/hitoshi/votable/internal/repository"
)

// CreateEntityInput はエンティティ作成の入力。
// Votablesは任意で、エンティティと同一トランザクションで作成される。
type CreateEntityInput struct {
	Type        model.EntityType
	Title       string
	Description *string
	UserID      string
	Votables    []VotableInput
}

// VotableInput は投票項目作成の入力。ConfigはTypeに対応する形式のJSON。
type VotableInput struct {
	Type   model.VotableType
	Label  string
	Config json.RawMessage
}

// Service はエンティティ管理のサービス層。
type Service struct {
	entityRepo  repository.EntityRepository
	votableRepo repository.VotableRepository
	voteRepo    repository.VoteRepository
	userRepo    repository.UserRepository
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	entityRepo repository.EntityRepository,
	votableRepo repository.VotableRepository,
	voteRepo repository.VoteRepository,
	userRepo repository.UserRepository,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		entityRepo:  entityRepo,
		votableRepo: votableRepo,
		voteRepo:    voteRepo,
		userRepo:    userRepo,
		metrics:     collector,
		now:         time.Now,
	}
}

// CreateEntity はエンティティを作成する。
// 入力に投票項目が含まれる場合はエンティティと同時に作成し、いずれかが失敗すれば何も保存されない。
func (s *Service) CreateEntity(ctx context.Context, input CreateEntityInput) (*model.EntityWithDetails, error) {
	if !input.Type.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("type が不正です: %q", input.Type))
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewValidationError("title は必須です")
	}
	if _, err := uuid.Parse(input.UserID); err != nil {
		return nil, model.NewUserNotFoundError(input.UserID)
	}

	creator, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if creator == nil {
		return nil, model.NewUserNotFoundError(input.UserID)
	}

	now := s.now()
	entity := &model.Entity{
		ID:          uuid.NewString(),
		Type:        input.Type,
		Title:       title,
		Description: normalizeDescription(input.Description),
		UserID:      input.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	votables, err := s.buildVotables(entity.ID, input.Votables, now)
	if err != nil {
		return nil, err
	}

	if err := s.entityRepo.CreateWithVotables(ctx, entity, votables); err != nil {
		return nil, fmt.Errorf("エンティティの作成に失敗しました: %w", err)
	}

	s.metrics.RecordEntityCreated(len(votables))
	slog.Info("エンティティを作成しました",
		slog.String("entity_id", entity.ID),
		slog.String("user_id", entity.UserID),
		slog.Int("votables", len(votables)),
	)

	return &model.EntityWithDetails{
		Entity:   *entity,
		Votables: votables,
		Creator:  creator,
	}, nil
}

// CreateVotable は既存エンティティに投票項目を1件追加する。
func (s *Service) CreateVotable(ctx context.Context, entityID string, input VotableInput) (*model.Votable, error) {
	votables, err := s.CreateVotables(ctx, entityID, []VotableInput{input})
	if err != nil {
		return nil, err
	}
	return votables[0], nil
}

// CreateVotables は既存エンティティに投票項目を一括追加する。
// 全件を1トランザクションで作成し、入力順が表示順になる。
func (s *Service) CreateVotables(ctx context.Context, entityID string, inputs []VotableInput) ([]*model.Votable, error) {
	if len(inputs) == 0 {
		return nil, model.NewValidationError("votables を1件以上指定してください")
	}
	if err := s.ensureEntity(ctx, entityID); err != nil {
		return nil, err
	}

	votables, err := s.buildVotables(entityID, inputs, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.votableRepo.CreateBatch(ctx, votables); err != nil {
		return nil, fmt.Errorf("投票項目の作成に失敗しました: %w", err)
	}

	s.metrics.RecordVotablesCreated(len(votables))
	slog.Info("投票項目を追加しました",
		slog.String("entity_id", entityID),
		slog.Int("votables", len(votables)),
	)

	return votables, nil
}

// GetEntity はエンティティを投票項目・作成者とあわせて返す。
func (s *Service) GetEntity(ctx context.Context, entityID string) (*model.EntityWithDetails, error) {
	entity, err := s.findEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	votables, err := s.votableRepo.ListByEntityID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("投票項目の取得に失敗しました: %w", err)
	}

	creator, err := s.userRepo.FindByID(ctx, entity.UserID)
	if err != nil {
		return nil, fmt.Errorf("作成者の取得に失敗しました: %w", err)
	}

	return &model.EntityWithDetails{
		Entity:   *entity,
		Votables: votables,
		Creator:  creator,
	}, nil
}

// ListEntities は全エンティティを作成日時の新しい順で返す。
func (s *Service) ListEntities(ctx context.Context) ([]*model.Entity, error) {
	entities, err := s.entityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("エンティティ一覧の取得に失敗しました: %w", err)
	}
	return entities, nil
}

// GetVotesForUser はエンティティの投票項目に対するユーザーの投票を返す。
func (s *Service) GetVotesForUser(ctx context.Context, entityID, userID string) ([]*model.Vote, error) {
	if err := s.ensureEntity(ctx, entityID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	votes, err := s.voteRepo.ListByEntityAndUser(ctx, entityID, userID)
	if err != nil {
		return nil, fmt.Errorf("投票の取得に失敗しました: %w", err)
	}
	return votes, nil
}

// GetVotablesWithUserVotes はエンティティの投票項目をユーザーの現在の投票値とあわせて返す。
// 入力フォームの初期値に使う。
func (s *Service) GetVotablesWithUserVotes(ctx context.Context, entityID, userID string) ([]model.VotableWithUserVote, error) {
	if err := s.ensureEntity(ctx, entityID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	votables, err := s.votableRepo.ListByEntityIDWithUserVote(ctx, entityID, userID)
	if err != nil {
		return nil, fmt.Errorf("投票項目の取得に失敗しました: %w", err)
	}
	return votables, nil
}

func (s *Service) findEntity(ctx context.Context, entityID string) (*model.Entity, error) {
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
	return entity, nil
}

func (s *Service) ensureEntity(ctx context.Context, entityID string) error {
	_, err := s.findEntity(ctx, entityID)
	return err
}

// buildVotables は入力を検証し、保存用の投票項目を生成する。
// 1件でも不正な入力があればどれも生成しない。
func (s *Service) buildVotables(entityID string, inputs []VotableInput, now time.Time) ([]*model.Votable, error) {
	votables := make([]*model.Votable, 0, len(inputs))
	for i, in := range inputs {
		if !in.Type.Valid() {
			return nil, model.NewValidationError(fmt.Sprintf("votables[%d].type が不正です: %q", i, in.Type))
		}
		label := strings.TrimSpace(in.Label)
		if label == "" {
			return nil, model.NewValidationError(fmt.Sprintf("votables[%d].label は必須です", i))
		}

		config, err := model.DecodeVotableConfig(in.Type, in.Config)
		if err != nil {
			return nil, model.NewValidationError(fmt.Sprintf("votables[%d].config: %v", i, err))
		}
		if err := config.Validate(); err != nil {
			return nil, model.NewValidationError(fmt.Sprintf("votables[%d].config: %v", i, err))
		}

		votables = append(votables, &model.Votable{
			ID:        uuid.NewString(),
			EntityID:  entityID,
			Type:      in.Type,
			Config:    config,
			Label:     label,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return votables, nil
}

// normalizeDescription は空白のみの説明をnilとして扱う。
func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
