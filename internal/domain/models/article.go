package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article is a knowledge-base article. It holds weak references (by id) into
// the section tree: deleting a section detaches the reference but never
// cascades to the article.
type Article struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// ArticleID is the human-facing identifier, "AN-" + zero-padded sequence.
	// It is allocated once at creation and never changes.
	ArticleID string `bson:"article_id" json:"article_id"`

	Title    string               `bson:"title" json:"title"`
	Content  string               `bson:"content" json:"content"` // sanitized HTML
	AuthorID primitive.ObjectID   `bson:"author_id" json:"author_id"`
	Sections []primitive.ObjectID `bson:"sections" json:"sections"` // non-empty, ordered

	Files    []ArticleFile `bson:"files,omitempty" json:"files,omitempty"`
	Tags     []string      `bson:"tags,omitempty" json:"tags,omitempty"`
	AutoTags []string      `bson:"auto_tags,omitempty" json:"auto_tags,omitempty"`

	// TagExtraction records how auto tags were derived (system metadata).
	TagExtraction *TagExtraction `bson:"tag_extraction,omitempty" json:"tag_extraction,omitempty"`

	// Expiry triad: ExpiresAt is set iff IsTemporary is true, and is derived
	// from TemporaryDuration at creation/update time.
	IsTemporary       bool       `bson:"is_temporary" json:"is_temporary"`
	TemporaryDuration string     `bson:"temporary_duration,omitempty" json:"temporary_duration,omitempty"`
	ExpiresAt         *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`

	Views    int64         `bson:"views" json:"views"`
	ViewedBy []ArticleView `bson:"viewed_by,omitempty" json:"viewed_by,omitempty"`
	Reads    []ArticleRead `bson:"reads,omitempty" json:"reads,omitempty"`

	// LastContentUpdate is bumped only when title, content or files change,
	// not on view/read tracking or count refreshes.
	LastContentUpdate time.Time `bson:"last_content_update" json:"last_content_update"`

	Hidden bool `bson:"hidden" json:"hidden"` // soft delete

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ArticleFile describes an uploaded attachment. Bytes live in the file
// storage backend; only metadata is kept on the article.
type ArticleFile struct {
	OriginalName string `bson:"originalname" json:"originalname"`
	Filename     string `bson:"filename" json:"filename"`
	Path         string `bson:"path" json:"path"`
	MimeType     string `bson:"mimetype" json:"mimetype"`
}

// ArticleView records the first view by a distinct user.
type ArticleView struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// ArticleRead records the latest read by a distinct user; ReadAt is updated
// on repeat reads.
type ArticleRead struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	ReadAt time.Time          `bson:"read_at" json:"read_at"`
}

// TagExtraction holds metadata about system tag derivation.
type TagExtraction struct {
	Method      string    `bson:"method" json:"method"`
	ExtractedAt time.Time `bson:"extracted_at" json:"extracted_at"`
}

// ArticleTitleMaxLen is the maximum article title length.
const ArticleTitleMaxLen = 200
