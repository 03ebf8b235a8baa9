// Package model はドメインモデルを定義する。
package model

import "time"

// EntityType はエンティティの種別を表す。作成後に変更されない。
type EntityType string

const (
	// EntityTypePrompt はプロンプトを表すエンティティ。
	EntityTypePrompt EntityType = "prompt"
	// EntityTypeText は任意のテキストを表すエンティティ。
	EntityTypeText EntityType = "text"
)

// Valid は定義済みのエンティティ種別かどうかを返す。
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypePrompt, EntityTypeText:
		return true
	default:
		return false
	}
}

// Entity は投票対象となるプロンプトやテキストを表す。
type Entity struct {
	ID          string
	Type        EntityType
	Title       string
	Description *string
	UserID      string // 作成者
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntityWithDetails はエンティティに投票項目と作成者を結合したモデル。
// 作成者が見つからない場合はCreatorがnilになる。
type EntityWithDetails struct {
	Entity
	Votables []*Votable
	Creator  *User
}
