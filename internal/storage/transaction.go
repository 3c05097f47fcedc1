package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TxFunc is a function that runs within a transaction.
type TxFunc func(*sql.Tx) error

// WithTransaction executes fn within a database transaction. It commits when
// fn returns nil and rolls back otherwise. A panic in fn rolls back and is
// re-raised.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Classify(fmt.Errorf("failed to begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else {
			if commitErr := tx.Commit(); commitErr != nil {
				err = Classify(fmt.Errorf("failed to commit transaction: %w", commitErr))
			}
		}
	}()

	err = fn(tx)
	return err
}
