package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Section is a named category in the knowledge-base hierarchy.
// Articles reference sections by id; sections form a tree through ParentID.
type Section struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Slug        string              `bson:"slug" json:"slug"` // unique, lowercase, URL-safe
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string              `bson:"icon" json:"icon"`
	Order       int                 `bson:"order" json:"order"`
	ParentID    *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"` // nil = root section
	IsActive    bool                `bson:"is_active" json:"is_active"`
	CreatedByID primitive.ObjectID  `bson:"created_by_id" json:"created_by_id"`

	// ArticleCount is a denormalized cache of non-hidden articles referencing
	// this section. It is refreshed after article saves and rebuilt by a
	// background job; never treat it as the source of truth.
	ArticleCount int `bson:"article_count" json:"article_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Children is populated by tree queries only; it is not persisted.
	Children []Section `bson:"-" json:"children,omitempty"`
}

// IsRoot returns true if the section has no parent.
func (s *Section) IsRoot() bool {
	return s.ParentID == nil
}

// DefaultSectionIcon is applied when a section is created without an icon.
const DefaultSectionIcon = "folder"

// Field length limits enforced on section input.
const (
	SectionNameMaxLen        = 50
	SectionDescriptionMaxLen = 200
)

// FlashInformationSlug identifies the section whose articles must be
// temporary (created with an expiration duration).
const FlashInformationSlug = "flash-information"
