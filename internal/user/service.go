// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/votable/internal/metrics"
	"github.com/hitoshi/votable/internal/model"
	"github.com/hitoshi/votable/internal/repository"
)

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		userRepo: userRepo,
		metrics:  collector,
		now:      time.Now,
	}
}

// CreateUser はemailでユーザーを検索し、存在しなければ作成する。
// 既存ユーザーの場合はnameが異なっても保存済みのレコードをそのまま返す。
func (s *Service) CreateUser(ctx context.Context, email, name string) (*model.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, model.NewValidationError("email は必須です")
	}
	if name == "" {
		return nil, model.NewValidationError("name は必須です")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		s.metrics.RecordUserCreated(metrics.ResultExisting)
		return existing, nil
	}

	now := s.now()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// 検索と作成の間に同じemailで登録された場合は先に登録された方を返す
		winner, findErr := s.userRepo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, fmt.Errorf("ユーザーの再検索に失敗しました: %w", findErr)
		}
		if winner == nil {
			return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
		}
		s.metrics.RecordUserCreated(metrics.ResultExisting)
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	s.metrics.RecordUserCreated(metrics.ResultCreated)
	slog.Info("ユーザーを作成しました",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// GetUser は指定IDのユーザーを返す。存在しない場合はNotFoundエラーを返す。
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewUserNotFoundError(id)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}
