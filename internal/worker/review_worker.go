package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/khanburhan/tokritrack/internal/amqp"
	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
)

// Notifier delivers review reminders to the user.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TelegramNotifier sends reminders to a fixed Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// ReviewWorker finds wishlist items whose cooling-off period has elapsed
// and sends a digest so the user can decide whether to buy or drop them.
type ReviewWorker struct {
	store    store.WishlistStore
	notifier Notifier
	now      func() time.Time
}

func NewReviewWorker(store store.WishlistStore, notifier Notifier) *ReviewWorker {
	return &ReviewWorker{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// ScanAndNotify loads every review-ready item and sends one digest message.
// With no notifier configured it only logs what it found.
func (w *ReviewWorker) ScanAndNotify(ctx context.Context) error {
	items, err := w.store.ListReviewReady(ctx, w.now())
	if err != nil {
		return fmt.Errorf("list review-ready items: %w", err)
	}

	if len(items) == 0 {
		slog.InfoContext(ctx, "No wishlist items ready for review")
		return nil
	}

	slog.InfoContext(ctx, "Wishlist items ready for review", "count", len(items))

	if w.notifier == nil {
		slog.WarnContext(ctx, "No notifier configured, skipping reminder",
			"count", len(items))
		return nil
	}

	if err := w.notifier.Notify(ctx, formatDigest(items)); err != nil {
		return fmt.Errorf("send review digest: %w", err)
	}

	slog.InfoContext(ctx, "Review digest sent", "count", len(items))
	return nil
}

// HandleReviewMessage processes a scheduled-review message from AMQP.
// The item may have been edited or deleted since the message was published,
// so the store is the source of truth for whether a reminder still applies.
func (w *ReviewWorker) HandleReviewMessage(ctx context.Context, msg *amqp.WishlistReviewMessage) error {
	slog.InfoContext(ctx, "Processing wishlist review message",
		"id", msg.ID,
		"user_id", msg.UserID,
		"review_after", msg.ReviewAfter.Format(time.RFC3339))

	items, err := w.store.ListItems(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("list wishlist for %s: %w", msg.UserID, err)
	}

	for _, item := range items {
		if item.ID != msg.ID {
			continue
		}
		if !item.ReviewAfter.Equal(msg.ReviewAfter) {
			// Edited after this message was published; a newer message
			// carries the current review time.
			slog.InfoContext(ctx, "Review message superseded by a later edit",
				"id", msg.ID)
			return nil
		}
		if !core.IsReviewReady(item, w.now()) {
			slog.InfoContext(ctx, "Item not yet ready for review",
				"id", msg.ID,
				"review_after", item.ReviewAfter.Format(time.RFC3339))
			return nil
		}
		if w.notifier == nil {
			slog.WarnContext(ctx, "No notifier configured, skipping reminder",
				"id", msg.ID)
			return nil
		}
		if err := w.notifier.Notify(ctx, formatDigest([]core.WishlistItem{item})); err != nil {
			return fmt.Errorf("send review reminder for %s: %w", msg.ID, err)
		}
		slog.InfoContext(ctx, "Review reminder sent", "id", msg.ID)
		return nil
	}

	// Deleted before the reminder fired.
	slog.InfoContext(ctx, "Wishlist item no longer exists, dropping reminder",
		"id", msg.ID)
	return nil
}

func formatDigest(items []core.WishlistItem) string {
	var b strings.Builder
	if len(items) == 1 {
		b.WriteString("1 wishlist item is ready for review:\n")
	} else {
		fmt.Fprintf(&b, "%d wishlist items are ready for review:\n", len(items))
	}
	for _, item := range items {
		fmt.Fprintf(&b, "• %s - $%s (%s urgency)\n",
			item.Title, item.Price.String(), item.Urgency)
	}
	b.WriteString("\nStill want them? Open Tokritrack to decide.")
	return b.String()
}
