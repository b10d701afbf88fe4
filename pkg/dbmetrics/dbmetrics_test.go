package dbmetrics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubExecutor struct {
	DBExecutor
}

func TestGetExecutor(t *testing.T) {
	fallback := &stubExecutor{}
	tx := &stubExecutor{}

	ctx := context.Background()
	assert.Same(t, fallback, GetExecutor(ctx, fallback))
	assert.False(t, IsInTransaction(ctx))

	txCtx := WithTx(ctx, tx)
	assert.Same(t, tx, GetExecutor(txCtx, fallback))
	assert.True(t, IsInTransaction(txCtx))
}

func TestOperation(t *testing.T) {
	assert.Equal(t, "select", operation("SELECT id FROM bookings"))
	assert.Equal(t, "insert", operation("\n  INSERT INTO bookings"))
	assert.Equal(t, "unknown", operation("   "))
}

func TestWrap_NilRecorder(t *testing.T) {
	var db *sql.DB
	wrapped := Wrap(db, nil)
	assert.NotPanics(t, func() { wrapped.observe("SELECT 1", time.Now()) })
}
