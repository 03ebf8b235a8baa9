// Package model はドメインモデルを定義する。
package model

import "time"

// Vote は投票項目に対するユーザーの投票を表す。
// (VotableID, UserID) ごとに最大1件で、再投票時は上書きされる。
type Vote struct {
	ID        string
	VotableID string
	UserID    string
	Value     string // NUMBER/SLIDERでは数値文字列
	CreatedAt time.Time // 再投票時に更新されるため、実質的には最終更新日時
}

// VotableWithUserVote は投票項目とユーザーの現在の投票値を結合したモデル。
// votesテーブルとLEFT JOINして取得される。未投票の場合UserVoteはnil。
type VotableWithUserVote struct {
	Votable
	UserVote *string
}
