package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	_, ok := From(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, WithTx(ctx, nil), "nil transaction leaves the context untouched")

	tx := &sql.Tx{}
	got, ok := From(WithTx(ctx, tx))
	assert.True(t, ok)
	assert.Same(t, tx, got)
}

func TestExecutorFor(t *testing.T) {
	db := &sql.DB{}
	tx := &sql.Tx{}

	assert.Same(t, db, ExecutorFor(context.Background(), db))
	assert.Same(t, tx, ExecutorFor(WithTx(context.Background(), tx), db))
}
