package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	Executor
	commits, rollbacks int
}

func (f *fakeTx) Commit(context.Context) error   { f.commits++; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rollbacks++; return nil }

type fakeConn struct {
	Executor
	tx    *fakeTx
	begin error
}

func (f *fakeConn) BeginTx(context.Context) (Transaction, error) {
	if f.begin != nil {
		return nil, f.begin
	}
	return f.tx, nil
}
func (f *fakeConn) Ping(context.Context) error { return nil }
func (f *fakeConn) Driver() Driver             { return DriverSQLite }
func (f *fakeConn) Close() error               { return nil }

func TestUnitOfWork(t *testing.T) {
	t.Run("outermost unit commits", func(t *testing.T) {
		conn := &fakeConn{tx: &fakeTx{}}
		uow := NewUnitOfWork(conn)

		ctx, err := uow.Begin(context.Background())
		require.NoError(t, err)
		assert.Same(t, conn.tx, ExecutorFromContext(ctx, conn))

		inner, err := uow.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, uow.Commit(inner))
		assert.Equal(t, 0, conn.tx.commits)

		require.NoError(t, uow.Commit(ctx))
		assert.Equal(t, 1, conn.tx.commits)
	})

	t.Run("rollback without transaction fails", func(t *testing.T) {
		uow := NewUnitOfWork(&fakeConn{})
		assert.Error(t, uow.Rollback(context.Background()))
	})

	t.Run("begin error is returned", func(t *testing.T) {
		uow := NewUnitOfWork(&fakeConn{begin: errors.New("locked")})
		_, err := uow.Begin(context.Background())
		assert.EqualError(t, err, "locked")
	})

	t.Run("connection used outside a transaction", func(t *testing.T) {
		conn := &fakeConn{}
		assert.Same(t, conn, ExecutorFromContext(context.Background(), conn))
	})
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
