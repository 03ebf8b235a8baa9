// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/votable/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はemailでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// email重複時は ErrDuplicateEmail を返す。
	Create(ctx context.Context, user *model.User) error
}

// EntityRepository はエンティティデータの永続化インターフェース。
type EntityRepository interface {
	// FindByID は指定IDのエンティティを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Entity, error)

	// List は全エンティティをcreated_at降順で返す。
	List(ctx context.Context) ([]*model.Entity, error)

	// CreateWithVotables はエンティティと投票項目を同一トランザクションで作成する。
	// いずれかの挿入に失敗した場合は全てロールバックされる。
	CreateWithVotables(ctx context.Context, entity *model.Entity, votables []*model.Votable) error
}

// VotableRepository は投票項目データの永続化インターフェース。
type VotableRepository interface {
	// FindByID は指定IDの投票項目を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Votable, error)

	// ListByEntityID はエンティティの投票項目を挿入順で返す。
	ListByEntityID(ctx context.Context, entityID string) ([]*model.Votable, error)

	// ListByEntityIDWithUserVote はエンティティの投票項目をユーザーの投票値とLEFT JOINして返す。
	ListByEntityIDWithUserVote(ctx context.Context, entityID, userID string) ([]model.VotableWithUserVote, error)

	// CreateBatch は投票項目を同一トランザクションで一括作成する。
	CreateBatch(ctx context.Context, votables []*model.Votable) error
}

// VoteRepository は投票データの永続化インターフェース。
type VoteRepository interface {
	// FindByVotableAndUser は投票項目IDとユーザーIDで投票を取得する。見つからない場合はnilを返す。
	FindByVotableAndUser(ctx context.Context, votableID, userID string) (*model.Vote, error)

	// Create は新規投票を作成する。
	Create(ctx context.Context, vote *model.Vote) error

	// UpdateValue は既存投票の値とcreated_atを上書きする。
	UpdateValue(ctx context.Context, vote *model.Vote) error

	// ListByEntityID はエンティティの投票項目に紐づく全投票を返す。
	// votablesとJOINするため、投票項目に紐づかない投票は含まれない。
	ListByEntityID(ctx context.Context, entityID string) ([]*model.Vote, error)

	// ListByEntityAndUser はエンティティの投票項目に対するユーザーの投票を返す。
	ListByEntityAndUser(ctx context.Context, entityID, userID string) ([]*model.Vote, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
