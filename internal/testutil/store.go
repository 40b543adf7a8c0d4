package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ganttboard/internal/db"
)

// NewTestStore opens an empty in-memory document store that is closed when
// the test ends.
func NewTestStore(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.MemoryPath)
	require.NoError(t, err, "opening in-memory store")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func NewTestBatch(conn *sql.DB) db.Batch {
	return db.NewTxBatch(conn)
}

// FailingBatch is a db.Batch whose Nth write (counting from 1) returns Err
// instead of reaching the database, so tests can break a SaveMany halfway.
// Reads are never counted.
type FailingBatch struct {
	Conn      *sql.DB
	FailWrite int
	Err       error
}

func (b *FailingBatch) Run(ctx context.Context, fn func(ctx context.Context, conn db.Conn) error) error {
	return db.NewTxBatch(b.Conn).Run(ctx, func(ctx context.Context, tx db.Conn) error {
		return fn(ctx, &failingConn{Conn: tx, failAt: b.FailWrite, err: b.Err})
	})
}

type failingConn struct {
	db.Conn
	writes int
	failAt int
	err    error
}

func (c *failingConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c.writes++
	if c.writes == c.failAt {
		return nil, c.err
	}
	return c.Conn.ExecContext(ctx, query, args...)
}
