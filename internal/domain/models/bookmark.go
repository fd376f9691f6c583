package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bookmark marks an article as saved by a user. At most one bookmark exists
// per (user, article) pair.
type Bookmark struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ArticleID primitive.ObjectID `bson:"article_id" json:"article_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
