// Package bookmark provides storage for per-user article bookmarks.
package bookmark

import (
	"context"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/storeutil"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides access to the bookmarks collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new bookmark store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("bookmarks"),
	}
}

// Add bookmarks an article for a user. Adding an existing bookmark is a
// no-op; the unique (user, article) index absorbs races.
func (s *Store) Add(ctx context.Context, userID, articleID primitive.ObjectID) (*models.Bookmark, error) {
	bookmark := models.Bookmark{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ArticleID: articleID,
		CreatedAt: time.Now(),
	}

	if _, err := s.c.InsertOne(ctx, bookmark); err != nil {
		if storeutil.IsDuplicateKey(err) {
			return s.get(ctx, userID, articleID)
		}
		return nil, err
	}
	return &bookmark, nil
}

func (s *Store) get(ctx context.Context, userID, articleID primitive.ObjectID) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "article_id": articleID}).Decode(&bookmark)
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// Remove deletes a user's bookmark for an article. Returns true if a
// bookmark existed.
func (s *Store) Remove(ctx context.Context, userID, articleID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "article_id": articleID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Exists reports whether the user has bookmarked the article.
func (s *Store) Exists(ctx context.Context, userID, articleID primitive.ObjectID) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "article_id": articleID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns a user's bookmarks, newest first, paginated.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, page int64) ([]models.Bookmark, error) {
	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookmarks []models.Bookmark
	if err := cursor.All(ctx, &bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// DeleteByArticle removes every bookmark pointing at an article. Called when
// the article is deleted.
func (s *Store) DeleteByArticle(ctx context.Context, articleID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"article_id": articleID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
