// Package model はドメインモデルを定義する。
package model

import "time"

// User は投票に参加するユーザーを表す。
// emailで一意に識別され、同じemailでの再登録は既存レコードを返す。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
