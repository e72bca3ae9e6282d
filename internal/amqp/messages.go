package amqp

import (
	"encoding/json"
	"time"
)

// WishlistReviewMessage announces that a wishlist item got a new review date.
// Consumers fetch the full item from the store, so the payload stays small.
type WishlistReviewMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ReviewAfter time.Time `json:"reviewAfter"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewWishlistReviewMessage creates a review message for an item
func NewWishlistReviewMessage(id, userID string, reviewAfter time.Time) *WishlistReviewMessage {
	return &WishlistReviewMessage{
		ID:          id,
		UserID:      userID,
		ReviewAfter: reviewAfter,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *WishlistReviewMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// WishlistReviewMessageFromJSON creates a message from JSON bytes
func WishlistReviewMessageFromJSON(data []byte) (*WishlistReviewMessage, error) {
	var msg WishlistReviewMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
