// Package mongo implements the record store ports on MongoDB, the hosted
// document database backend. Collections are addressed by name with equality
// filters on the owning user, one collection per record kind.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khanburhan/tokritrack/internal/core"
	"github.com/khanburhan/tokritrack/internal/store"
)

const (
	expensesCollection = "expenses"
	wishlistCollection = "wishlist"
	budgetsCollection  = "monthlyBudgets"
)

// Store wraps an explicitly injected Mongo client; no package-level client
// instance exists.
type Store struct {
	client   *mongo.Client
	expenses *mongo.Collection
	wishlist *mongo.Collection
	budgets  *mongo.Collection
}

// New connects to MongoDB, pings it and ensures the unique (userId, month)
// index that guards against duplicate monthly budgets.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:   client,
		expenses: db.Collection(expensesCollection),
		wishlist: db.Collection(wishlistCollection),
		budgets:  db.Collection(budgetsCollection),
	}

	_, err = s.budgets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "month", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create budget uniqueness index: %w", err)
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", dbName)
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type expenseDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Amount    int64              `bson:"amountCents"`
	Category  string             `bson:"category"`
	Tag       string             `bson:"tag"`
	CreatedAt time.Time          `bson:"created_at"`
}

type wishlistDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Title       string             `bson:"title"`
	Price       int64              `bson:"priceCents"`
	Urgency     string             `bson:"urgency"`
	ReviewAfter time.Time          `bson:"reviewAfter"`
}

type budgetDoc struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"`
	UserID     string              `bson:"userId"`
	Month      string              `bson:"month"`
	Total      int64               `bson:"totalBudgetCents"`
	Categories []budgetCategoryDoc `bson:"categories"`
	CreatedAt  time.Time           `bson:"createdAt"`
}

type budgetCategoryDoc struct {
	Name  string `bson:"name"`
	Limit int64  `bson:"limitCents"`
}

func (d expenseDoc) toCore() core.Expense {
	return core.Expense{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Amount:    core.Money{Cents: d.Amount},
		Category:  d.Category,
		Tag:       core.Tag(d.Tag),
		CreatedAt: d.CreatedAt,
	}
}

func (d wishlistDoc) toCore() core.WishlistItem {
	return core.WishlistItem{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Title:       d.Title,
		Price:       core.Money{Cents: d.Price},
		Urgency:     core.Urgency(d.Urgency),
		ReviewAfter: d.ReviewAfter,
	}
}

func (d budgetDoc) toCore() core.MonthlyBudget {
	b := core.MonthlyBudget{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		MonthKey:  d.Month,
		Total:     core.Money{Cents: d.Total},
		CreatedAt: d.CreatedAt,
	}
	for _, c := range d.Categories {
		b.Categories = append(b.Categories, core.BudgetCategory{
			Name:  c.Name,
			Limit: core.Money{Cents: c.Limit},
		})
	}
	return b
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	doc := expenseDoc{
		UserID:    e.UserID,
		Amount:    e.Amount.Cents,
		Category:  e.Category,
		Tag:       string(e.Tag),
		CreatedAt: createdAt,
	}
	res, err := s.expenses.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	cursor, err := s.expenses.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.Expense
	for cursor.Next(ctx) {
		var doc expenseDoc
		if err := cursor.Decode(&doc); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable expense document", "error", err)
			continue
		}
		out = append(out, doc.toCore())
	}
	return out, cursor.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := s.expenses.DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateItem(ctx context.Context, item core.WishlistItem) (string, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	doc := wishlistDoc{
		UserID:      item.UserID,
		Title:       item.Title,
		Price:       item.Price.Cents,
		Urgency:     string(item.Urgency),
		ReviewAfter: item.ReviewAfter,
	}
	res, err := s.wishlist.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert wishlist item: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *Store) ListItems(ctx context.Context, userID string) ([]core.WishlistItem, error) {
	cursor, err := s.wishlist.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("find wishlist items: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.WishlistItem
	for cursor.Next(ctx) {
		var doc wishlistDoc
		if err := cursor.Decode(&doc); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable wishlist document", "error", err)
			continue
		}
		out = append(out, doc.toCore())
	}
	return out, cursor.Err()
}

func (s *Store) UpdateItem(ctx context.Context, item core.WishlistItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(item.ID)
	if err != nil {
		return store.ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"title":       item.Title,
		"priceCents":  item.Price.Cents,
		"urgency":     string(item.Urgency),
		"reviewAfter": item.ReviewAfter,
	}}
	res, err := s.wishlist.UpdateOne(ctx, bson.M{"_id": oid, "userId": item.UserID}, update)
	if err != nil {
		return fmt.Errorf("update wishlist item: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := s.wishlist.DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListReviewReady(ctx context.Context, now time.Time) ([]core.WishlistItem, error) {
	filter := bson.M{"reviewAfter": bson.M{"$lte": now, "$gt": time.Time{}}}
	cursor, err := s.wishlist.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find review-ready items: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.WishlistItem
	for cursor.Next(ctx) {
		var doc wishlistDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		out = append(out, doc.toCore())
	}
	return out, cursor.Err()
}

func (s *Store) CreateBudget(ctx context.Context, b core.MonthlyBudget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	doc := budgetDoc{
		UserID:    b.UserID,
		Month:     b.MonthKey,
		Total:     b.Total.Cents,
		CreatedAt: createdAt,
	}
	for _, c := range b.Categories {
		doc.Categories = append(doc.Categories, budgetCategoryDoc{Name: c.Name, Limit: c.Limit.Cents})
	}
	res, err := s.budgets.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicateBudget
		}
		return "", fmt.Errorf("insert monthly budget: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *Store) FindBudget(ctx context.Context, userID, monthKey string) (core.MonthlyBudget, error) {
	var doc budgetDoc
	err := s.budgets.FindOne(ctx, bson.M{"userId": userID, "month": monthKey}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return core.MonthlyBudget{}, store.ErrNotFound
		}
		return core.MonthlyBudget{}, fmt.Errorf("find monthly budget: %w", err)
	}
	return doc.toCore(), nil
}
