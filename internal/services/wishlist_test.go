package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store/memory"
)

type capturingPublisher struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (p *capturingPublisher) PublishWishlistReview(_ context.Context, id, userID string, _ time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, id)
	return nil
}

func TestWishlistService_Create_SchedulesReview(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewWishlistService(memory.New(), nil)
	svc.now = func() time.Time { return now }

	item, err := svc.Create(context.Background(), "user-1", "Headphones", "199.99", "medium")
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, int64(19999), item.Price.Cents)
	assert.Equal(t, core.UrgencyMedium, item.Urgency)
	assert.Equal(t, now.Add(7*24*time.Hour), item.ReviewAfter)
}

func TestWishlistService_Update_RestartsCoolingOff(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewWishlistService(memory.New(), nil)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", "Headphones", "199.99", "medium")
	require.NoError(t, err)

	// Six days later the item is near review; an edit resets the clock
	now = now.Add(6 * 24 * time.Hour)
	updated, err := svc.Update(ctx, "user-1", item.ID, "Headphones Pro", "249.99", "high")
	require.NoError(t, err)

	assert.Equal(t, now.Add(7*24*time.Hour), updated.ReviewAfter)
	assert.True(t, updated.ReviewAfter.After(item.ReviewAfter))

	listed, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Headphones Pro", listed[0].Title)
	assert.Equal(t, core.UrgencyHigh, listed[0].Urgency)
}

func TestWishlistService_Create_PublishesReview(t *testing.T) {
	pub := &capturingPublisher{}
	svc := NewWishlistService(memory.New(), pub)

	item, err := svc.Create(context.Background(), "user-1", "Headphones", "199.99", "low")
	require.NoError(t, err)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, item.ID, pub.messages[0])
}

func TestWishlistService_Create_PublishFailureDoesNotFail(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("broker down")}
	svc := NewWishlistService(memory.New(), pub)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", "Headphones", "199.99", "low")
	require.NoError(t, err)

	listed, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1, "item must be saved even when the announcement fails")
}

func TestWishlistService_Create_Invalid(t *testing.T) {
	svc := NewWishlistService(memory.New(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		title   string
		price   string
		urgency string
		wantErr error
	}{
		{"empty title", "", "10", "low", core.ErrEmptyTitle},
		{"bad price", "Thing", "free", "low", core.ErrInvalidAmount},
		{"bad urgency", "Thing", "10", "urgent", core.ErrInvalidUrgency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user-1", tt.title, tt.price, tt.urgency)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWishlistService_Delete(t *testing.T) {
	svc := NewWishlistService(memory.New(), nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", "Headphones", "199.99", "low")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", item.ID))

	listed, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}
