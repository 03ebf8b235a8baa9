package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/votable/internal/model"
)

// PostgresEntityRepo はPostgreSQLを使用したエンティティリポジトリ。
type PostgresEntityRepo struct {
	db *sql.DB
}

// NewPostgresEntityRepo はPostgresEntityRepoを生成する。
func NewPostgresEntityRepo(db *sql.DB) *PostgresEntityRepo {
	return &PostgresEntityRepo{db: db}
}

// FindByID は指定IDのエンティティを取得する。見つからない場合はnilを返す。
func (r *PostgresEntityRepo) FindByID(ctx context.Context, id string) (*model.Entity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, title, description, user_id, created_at, updated_at
		 FROM entities WHERE id = $1`,
		id,
	)

	entity, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find entity by ID: %w", err)
	}
	return entity, nil
}

// List は全エンティティをcreated_at降順で返す。
func (r *PostgresEntityRepo) List(ctx context.Context) ([]*model.Entity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, title, description, user_id, created_at, updated_at
		 FROM entities
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	entities := []*model.Entity{}
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return entities, nil
}

// CreateWithVotables はエンティティと投票項目を同一トランザクションで作成する。
// いずれかの挿入に失敗した場合は全てロールバックされる。
func (r *PostgresEntityRepo) CreateWithVotables(ctx context.Context, entity *model.Entity, votables []*model.Votable) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entities (id, type, title, description, user_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entity.ID, string(entity.Type), entity.Title, entity.Description,
			entity.UserID, entity.CreatedAt, entity.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entity: %w", err)
		}

		for _, v := range votables {
			if err := insertVotable(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(s rowScanner) (*model.Entity, error) {
	entity := &model.Entity{}
	var entityType string
	var description sql.NullString

	err := s.Scan(
		&entity.ID, &entityType, &entity.Title, &description,
		&entity.UserID, &entity.CreatedAt, &entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entity.Type = model.EntityType(entityType)
	if description.Valid {
		entity.Description = &description.String
	}
	return entity, nil
}

// compile-time interface check
var _ EntityRepository = (*PostgresEntityRepo)(nil)
