package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingUoW struct {
	begins, commits, rollbacks int
}

func (u *countingUoW) Begin(ctx context.Context) (context.Context, error) {
	u.begins++
	return ctx, nil
}
func (u *countingUoW) Commit(context.Context) error   { u.commits++; return nil }
func (u *countingUoW) Rollback(context.Context) error { u.rollbacks++; return nil }

func TestWithUnitOfWork(t *testing.T) {
	uow := &countingUoW{}
	assert.NoError(t, WithUnitOfWork(context.Background(), uow, func(context.Context) error { return nil }))
	assert.Equal(t, 1, uow.commits)

	boom := errors.New("boom")
	err := WithUnitOfWork(context.Background(), uow, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, uow.rollbacks)
	assert.Equal(t, 1, uow.commits)
	assert.Equal(t, 2, uow.begins)
}
