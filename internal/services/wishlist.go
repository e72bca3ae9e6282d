package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
)

// ReviewPublisher announces freshly scheduled review dates. The AMQP client
// satisfies this; a nil publisher disables the announcements.
type ReviewPublisher interface {
	PublishWishlistReview(ctx context.Context, id, userID string, reviewAfter time.Time) error
}

// WishlistService manages wishlist items. Every create and update pushes the
// review date a full cooling-off period into the future.
type WishlistService struct {
	store     store.WishlistStore
	publisher ReviewPublisher
	now       func() time.Time
}

func NewWishlistService(store store.WishlistStore, publisher ReviewPublisher) *WishlistService {
	return &WishlistService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create adds an item with a review date one cooling-off period away
func (s *WishlistService) Create(ctx context.Context, userID, title, price, urgency string) (core.WishlistItem, error) {
	money, err := core.ParseAmount(price)
	if err != nil {
		return core.WishlistItem{}, err
	}

	item := core.WishlistItem{
		UserID:      userID,
		Title:       title,
		Price:       money,
		Urgency:     core.Urgency(urgency),
		ReviewAfter: s.now().Add(core.ReviewDelay),
	}
	if err := item.Validate(); err != nil {
		return core.WishlistItem{}, err
	}

	id, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return core.WishlistItem{}, fmt.Errorf("create wishlist item: %w", err)
	}
	item.ID = id

	s.publishReview(ctx, item)
	return item, nil
}

// Update rewrites an item's fields. The edit restarts the cooling-off
// period, so the review date moves forward again.
func (s *WishlistService) Update(ctx context.Context, userID, id, title, price, urgency string) (core.WishlistItem, error) {
	money, err := core.ParseAmount(price)
	if err != nil {
		return core.WishlistItem{}, err
	}

	item := core.WishlistItem{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Price:       money,
		Urgency:     core.Urgency(urgency),
		ReviewAfter: s.now().Add(core.ReviewDelay),
	}
	if err := item.Validate(); err != nil {
		return core.WishlistItem{}, err
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return core.WishlistItem{}, fmt.Errorf("update wishlist item: %w", err)
	}

	s.publishReview(ctx, item)
	return item, nil
}

// List returns all wishlist items owned by the user
func (s *WishlistService) List(ctx context.Context, userID string) ([]core.WishlistItem, error) {
	return s.store.ListItems(ctx, userID)
}

// Delete removes the user's item by ID
func (s *WishlistService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteItem(ctx, userID, id); err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	return nil
}

func (s *WishlistService) publishReview(ctx context.Context, item core.WishlistItem) {
	if s.publisher == nil {
		return
	}
	// The item is already saved; a failed announcement must not fail the request
	if err := s.publisher.PublishWishlistReview(ctx, item.ID, item.UserID, item.ReviewAfter); err != nil {
		slog.WarnContext(ctx, "Failed to publish review message",
			"id", item.ID, "user_id", item.UserID, "error", err)
	}
}
