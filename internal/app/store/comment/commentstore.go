// Package comment provides storage for article comments.
package comment

import (
	"context"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/storeutil"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides access to the comments collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new comment store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("comments"),
	}
}

// CreateInput contains the input for creating a comment.
type CreateInput struct {
	ArticleID primitive.ObjectID
	AuthorID  primitive.ObjectID
	Content   string
}

// Create creates a new comment.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Comment, error) {
	now := time.Now()
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		ArticleID: input.ArticleID,
		AuthorID:  input.AuthorID,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByID retrieves a comment by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateContent replaces a comment's content.
func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"content":    content,
		"updated_at": time.Now(),
	}})
	return err
}

// Delete removes a comment.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByArticle removes every comment on an article. Called when the
// article itself is deleted.
func (s *Store) DeleteByArticle(ctx context.Context, articleID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"article_id": articleID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByArticle returns an article's comments oldest first, paginated.
func (s *Store) ListByArticle(ctx context.Context, articleID primitive.ObjectID, limit, page int64) ([]models.Comment, error) {
	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{"article_id": articleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByArticle returns the number of comments on an article.
func (s *Store) CountByArticle(ctx context.Context, articleID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"article_id": articleID})
}
