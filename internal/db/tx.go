package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Conn is what document queries run against: the pool itself, or the
// transaction of a batch in progress.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Conn = (*sql.DB)(nil)
	_ Conn = (*sql.Tx)(nil)
)

// Batch groups document writes so that a document and its backup ring land
// together or not at all.
type Batch interface {
	Run(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error
}

// TxBatch runs every batch in its own database transaction.
type TxBatch struct {
	db *sql.DB
}

func NewTxBatch(db *sql.DB) *TxBatch {
	return &TxBatch{db: db}
}

// Run commits when fn returns nil. An error or a panic from fn rolls every
// write of the batch back; the panic is re-raised afterwards.
func (b *TxBatch) Run(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting document batch: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back document batch: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document batch: %w", err)
	}
	return nil
}
