package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
	"github.com/khanburhan/tokritrack/internal/store/memory"
)

func TestExpenseService_Create(t *testing.T) {
	svc := NewExpenseService(memory.New())
	ctx := context.Background()

	expense, err := svc.Create(ctx, "user-1", "12.50", "Food", "planned")
	require.NoError(t, err)

	assert.NotEmpty(t, expense.ID)
	assert.Equal(t, int64(1250), expense.Amount.Cents)
	assert.Equal(t, "Food", expense.Category)
	assert.Equal(t, core.TagPlanned, expense.Tag)

	listed, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].CreatedAt.IsZero())
}

func TestExpenseService_Create_Invalid(t *testing.T) {
	svc := NewExpenseService(memory.New())
	ctx := context.Background()

	tests := []struct {
		name     string
		amount   string
		category string
		tag      string
		wantErr  error
	}{
		{"bad amount", "abc", "Food", "planned", core.ErrInvalidAmount},
		{"zero amount", "0", "Food", "planned", core.ErrInvalidAmount},
		{"empty category", "10", "", "planned", core.ErrEmptyCategory},
		{"bad tag", "10", "Food", "maybe", core.ErrInvalidTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user-1", tt.amount, tt.category, tt.tag)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	listed, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, listed, "invalid submissions must not be stored")
}

func TestExpenseService_Delete(t *testing.T) {
	svc := NewExpenseService(memory.New())
	ctx := context.Background()

	expense, err := svc.Create(ctx, "user-1", "5", "Food", "impulse")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", expense.ID))

	listed, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestExpenseService_Delete_WrongUser(t *testing.T) {
	svc := NewExpenseService(memory.New())
	ctx := context.Background()

	expense, err := svc.Create(ctx, "user-1", "5", "Food", "impulse")
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-2", expense.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	listed, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1, "another user's delete must not remove the record")
}
