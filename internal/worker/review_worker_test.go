package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanburhan/tokritrack/internal/amqp"
	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store/memory"
)

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

func newTestWorker(t *testing.T, notifier Notifier) (*ReviewWorker, *memory.Store, time.Time) {
	t.Helper()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	st := memory.New()
	w := NewReviewWorker(st, notifier)
	w.now = func() time.Time { return now }
	return w, st, now
}

func TestReviewWorker_ScanAndNotify(t *testing.T) {
	notifier := &fakeNotifier{}
	w, st, now := newTestWorker(t, notifier)
	ctx := context.Background()

	_, err := st.CreateItem(ctx, core.WishlistItem{
		UserID:      "user-1",
		Title:       "Mechanical keyboard",
		Price:       core.Money{Cents: 12999},
		Urgency:     core.UrgencyHigh,
		ReviewAfter: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = st.CreateItem(ctx, core.WishlistItem{
		UserID:      "user-2",
		Title:       "Standing desk",
		Price:       core.Money{Cents: 45000},
		Urgency:     core.UrgencyLow,
		ReviewAfter: now.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, w.ScanAndNotify(ctx))

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "1 wishlist item is ready for review")
	assert.Contains(t, notifier.messages[0], "Mechanical keyboard")
	assert.Contains(t, notifier.messages[0], "$129.99")
	assert.NotContains(t, notifier.messages[0], "Standing desk")
}

func TestReviewWorker_ScanAndNotify_NothingReady(t *testing.T) {
	notifier := &fakeNotifier{}
	w, st, now := newTestWorker(t, notifier)
	ctx := context.Background()

	_, err := st.CreateItem(ctx, core.WishlistItem{
		UserID:      "user-1",
		Title:       "Headphones",
		Price:       core.Money{Cents: 9900},
		Urgency:     core.UrgencyMedium,
		ReviewAfter: now.Add(core.ReviewDelay),
	})
	require.NoError(t, err)

	require.NoError(t, w.ScanAndNotify(ctx))
	assert.Empty(t, notifier.messages)
}

func TestReviewWorker_ScanAndNotify_NoNotifier(t *testing.T) {
	w, st, now := newTestWorker(t, nil)
	ctx := context.Background()

	_, err := st.CreateItem(ctx, core.WishlistItem{
		UserID:      "user-1",
		Title:       "Camera",
		Price:       core.Money{Cents: 65000},
		Urgency:     core.UrgencyHigh,
		ReviewAfter: now.Add(-time.Minute),
	})
	require.NoError(t, err)

	// Logs the hit but has nowhere to send it.
	require.NoError(t, w.ScanAndNotify(ctx))
}

func TestReviewWorker_ScanAndNotify_NotifierError(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	w, st, now := newTestWorker(t, notifier)
	ctx := context.Background()

	_, err := st.CreateItem(ctx, core.WishlistItem{
		UserID:      "user-1",
		Title:       "Camera",
		Price:       core.Money{Cents: 65000},
		Urgency:     core.UrgencyHigh,
		ReviewAfter: now.Add(-time.Minute),
	})
	require.NoError(t, err)

	err = w.ScanAndNotify(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram down")
}

func TestReviewWorker_HandleReviewMessage(t *testing.T) {
	notifier := &fakeNotifier{}
	w, st, now := newTestWorker(t, notifier)
	ctx := context.Background()

	reviewAfter := now.Add(-time.Hour)
	id, err := st.CreateItem(ctx, core.WishlistItem{
		UserID:      "user-1",
		Title:       "Espresso machine",
		Price:       core.Money{Cents: 32000},
		Urgency:     core.UrgencyMedium,
		ReviewAfter: reviewAfter,
	})
	require.NoError(t, err)

	msg := &amqp.WishlistReviewMessage{ID: id, UserID: "user-1", ReviewAfter: reviewAfter}
	require.NoError(t, w.HandleReviewMessage(ctx, msg))

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Espresso machine")
}

func TestReviewWorker_HandleReviewMessage_Superseded(t *testing.T) {
	notifier := &fakeNotifier{}
	w, st, now := newTestWorker(t, notifier)
	ctx := context.Background()

	oldReviewAfter := now.Add(-time.Hour)
	id, err := st.CreateItem(ctx, core.WishlistItem{
		UserID:      "user-1",
		Title:       "Espresso machine",
		Price:       core.Money{Cents: 32000},
		Urgency:     core.UrgencyMedium,
		ReviewAfter: now.Add(core.ReviewDelay),
	})
	require.NoError(t, err)

	// Message carries the review time from before the latest edit.
	msg := &amqp.WishlistReviewMessage{ID: id, UserID: "user-1", ReviewAfter: oldReviewAfter}
	require.NoError(t, w.HandleReviewMessage(ctx, msg))
	assert.Empty(t, notifier.messages)
}

func TestReviewWorker_HandleReviewMessage_ItemDeleted(t *testing.T) {
	notifier := &fakeNotifier{}
	w, _, now := newTestWorker(t, notifier)
	ctx := context.Background()

	msg := &amqp.WishlistReviewMessage{
		ID:          "mem:99",
		UserID:      "user-1",
		ReviewAfter: now.Add(-time.Hour),
	}
	require.NoError(t, w.HandleReviewMessage(ctx, msg))
	assert.Empty(t, notifier.messages)
}

func TestFormatDigest(t *testing.T) {
	items := []core.WishlistItem{
		{Title: "Keyboard", Price: core.Money{Cents: 12999}, Urgency: core.UrgencyHigh},
		{Title: "Desk", Price: core.Money{Cents: 45000}, Urgency: core.UrgencyLow},
	}
	text := formatDigest(items)
	assert.Contains(t, text, "2 wishlist items are ready for review")
	assert.Contains(t, text, "Keyboard - $129.99 (high urgency)")
	assert.Contains(t, text, "Desk - $450.00 (low urgency)")
}
