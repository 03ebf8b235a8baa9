package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/votable/internal/model"
)

// PostgresVoteRepo はPostgreSQLを使用した投票リポジトリ。
type PostgresVoteRepo struct {
	db *sql.DB
}

// NewPostgresVoteRepo はPostgresVoteRepoを生成する。
func NewPostgresVoteRepo(db *sql.DB) *PostgresVoteRepo {
	return &PostgresVoteRepo{db: db}
}

// FindByVotableAndUser は投票項目IDとユーザーIDで投票を取得する。見つからない場合はnilを返す。
// 同一ペアの重複行は存在しない前提だが、万一存在した場合は最も新しい行を返す。
func (r *PostgresVoteRepo) FindByVotableAndUser(ctx context.Context, votableID, userID string) (*model.Vote, error) {
	vote := &model.Vote{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, votable_id, user_id, value, created_at
		 FROM votes
		 WHERE votable_id = $1 AND user_id = $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		votableID, userID,
	).Scan(&vote.ID, &vote.VotableID, &vote.UserID, &vote.Value, &vote.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return vote, nil
}

// Create は新規投票を作成する。
func (r *PostgresVoteRepo) Create(ctx context.Context, vote *model.Vote) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO votes (id, votable_id, user_id, value, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		vote.ID, vote.VotableID, vote.UserID, vote.Value, vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

// UpdateValue は既存投票の値とcreated_atを上書きする。
func (r *PostgresVoteRepo) UpdateValue(ctx context.Context, vote *model.Vote) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE votes SET value = $1, created_at = $2 WHERE id = $3`,
		vote.Value, vote.CreatedAt, vote.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("vote not found: %s", vote.ID)
	}
	return nil
}

// ListByEntityID はエンティティの投票項目に紐づく全投票を返す。
func (r *PostgresVoteRepo) ListByEntityID(ctx context.Context, entityID string) ([]*model.Vote, error) {
	return r.list(ctx,
		`SELECT vt.id, vt.votable_id, vt.user_id, vt.value, vt.created_at
		 FROM votes vt
		 INNER JOIN votables v ON v.id = vt.votable_id
		 WHERE v.entity_id = $1
		 ORDER BY v.seq, vt.created_at`,
		entityID,
	)
}

// ListByEntityAndUser はエンティティの投票項目に対するユーザーの投票を返す。
func (r *PostgresVoteRepo) ListByEntityAndUser(ctx context.Context, entityID, userID string) ([]*model.Vote, error) {
	return r.list(ctx,
		`SELECT vt.id, vt.votable_id, vt.user_id, vt.value, vt.created_at
		 FROM votes vt
		 INNER JOIN votables v ON v.id = vt.votable_id
		 WHERE v.entity_id = $1 AND vt.user_id = $2
		 ORDER BY v.seq`,
		entityID, userID,
	)
}

func (r *PostgresVoteRepo) list(ctx context.Context, query string, args ...any) ([]*model.Vote, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := []*model.Vote{}
	for rows.Next() {
		vote := &model.Vote{}
		if err := rows.Scan(&vote.ID, &vote.VotableID, &vote.UserID, &vote.Value, &vote.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}

// compile-time interface check
var _ VoteRepository = (*PostgresVoteRepo)(nil)
