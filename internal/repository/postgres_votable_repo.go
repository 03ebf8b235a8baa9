package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/votable/internal/model"
)

// PostgresVotableRepo はPostgreSQLを使用した投票項目リポジトリ。
// configはJSONBで保存し、読み出し時にtypeに対応する設定型へデコードする。
type PostgresVotableRepo struct {
	db *sql.DB
}

// NewPostgresVotableRepo はPostgresVotableRepoを生成する。
func NewPostgresVotableRepo(db *sql.DB) *PostgresVotableRepo {
	return &PostgresVotableRepo{db: db}
}

// FindByID は指定IDの投票項目を取得する。見つからない場合はnilを返す。
func (r *PostgresVotableRepo) FindByID(ctx context.Context, id string) (*model.Votable, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, entity_id, type, config, label, created_at, updated_at
		 FROM votables WHERE id = $1`,
		id,
	)

	v, err := scanVotable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find votable by ID: %w", err)
	}
	return v, nil
}

// ListByEntityID はエンティティの投票項目を挿入順で返す。
func (r *PostgresVotableRepo) ListByEntityID(ctx context.Context, entityID string) ([]*model.Votable, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_id, type, config, label, created_at, updated_at
		 FROM votables
		 WHERE entity_id = $1
		 ORDER BY seq`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list votables: %w", err)
	}
	defer rows.Close()

	votables := []*model.Votable{}
	for rows.Next() {
		v, err := scanVotable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan votable: %w", err)
		}
		votables = append(votables, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votables: %w", err)
	}

	return votables, nil
}

// ListByEntityIDWithUserVote はエンティティの投票項目をユーザーの投票値とLEFT JOINして返す。
// 未投票の項目はUserVoteがnilになる。
func (r *PostgresVotableRepo) ListByEntityIDWithUserVote(ctx context.Context, entityID, userID string) ([]model.VotableWithUserVote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT v.id, v.entity_id, v.type, v.config, v.label, v.created_at, v.updated_at,
		        vt.value
		 FROM votables v
		 LEFT JOIN votes vt ON vt.votable_id = v.id AND vt.user_id = $2
		 WHERE v.entity_id = $1
		 ORDER BY v.seq`,
		entityID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list votables with user vote: %w", err)
	}
	defer rows.Close()

	results := []model.VotableWithUserVote{}
	for rows.Next() {
		var (
			v          model.Votable
			votableTyp string
			config     []byte
			userVote   sql.NullString
		)
		if err := rows.Scan(
			&v.ID, &v.EntityID, &votableTyp, &config, &v.Label, &v.CreatedAt, &v.UpdatedAt,
			&userVote,
		); err != nil {
			return nil, fmt.Errorf("failed to scan votable with user vote: %w", err)
		}

		v.Type = model.VotableType(votableTyp)
		v.Config, err = model.DecodeVotableConfig(v.Type, config)
		if err != nil {
			return nil, fmt.Errorf("votable %s: %w", v.ID, err)
		}

		item := model.VotableWithUserVote{Votable: v}
		if userVote.Valid {
			item.UserVote = &userVote.String
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votables: %w", err)
	}

	return results, nil
}

// CreateBatch は投票項目を同一トランザクションで一括作成する。
func (r *PostgresVotableRepo) CreateBatch(ctx context.Context, votables []*model.Votable) error {
	if len(votables) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, v := range votables {
			if err := insertVotable(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertVotable はトランザクション内で投票項目を1件挿入する。
// seqはBIGSERIALで採番されるため、呼び出し順が挿入順になる。
func insertVotable(ctx context.Context, tx *sql.Tx, v *model.Votable) error {
	config, err := model.EncodeVotableConfig(v.Config)
	if err != nil {
		return err
	}

	// lib/pqは[]byteをbyteaとして送るため、JSONBには文字列で渡す
	_, err = tx.ExecContext(ctx,
		`INSERT INTO votables (id, entity_id, type, config, label, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.EntityID, string(v.Type), string(config), v.Label, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert votable: %w", err)
	}
	return nil
}

func scanVotable(s rowScanner) (*model.Votable, error) {
	v := &model.Votable{}
	var votableType string
	var config []byte

	if err := s.Scan(&v.ID, &v.EntityID, &votableType, &config, &v.Label, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}

	v.Type = model.VotableType(votableType)
	decoded, err := model.DecodeVotableConfig(v.Type, config)
	if err != nil {
		return nil, fmt.Errorf("votable %s: %w", v.ID, err)
	}
	v.Config = decoded
	return v, nil
}

// compile-time interface check
var _ VotableRepository = (*PostgresVotableRepo)(nil)
