package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicateEmail はemailのユニーク制約違反を表す。
var ErrDuplicateEmail = errors.New("email already exists")

// pgUniqueViolation はPostgreSQLのユニーク制約違反のSQLSTATE。
const pgUniqueViolation = "23505"

// withTx はトランザクション内でfnを実行する。
// fnがエラーを返した場合とpanicした場合はロールバックし、成功時のみコミットする。
func withTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// コミット後のRollbackはsql.ErrTxDoneを返すだけなので無視してよい
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation はエラーがユニーク制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
