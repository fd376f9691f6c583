// Package section provides storage for the section tree.
//
// Sections form a two-level hierarchy (roots and their children). Every
// section carries a globally unique slug derived from its name, a position
// among its siblings, and a denormalized count of the articles that
// reference it.
package section

import (
	"context"
	"fmt"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/slugify"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// slugAttempts bounds the collision-suffix probe so a pathological data set
// cannot spin forever.
const slugAttempts = 100

// Store provides access to the sections collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new section store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("sections"),
	}
}

// CreateInput contains the input for creating a section.
type CreateInput struct {
	Name        string
	Description string
	Icon        string
	ParentID    *primitive.ObjectID
	CreatedByID primitive.ObjectID
}

// Create creates a new section. The slug is derived from the name; if it is
// already taken a numeric suffix is appended (general, general-1, ...).
// New sections are placed after their current last sibling.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Section, error) {
	slug, err := s.availableSlug(ctx, input.Name, nil)
	if err != nil {
		return nil, err
	}

	order, err := s.nextOrder(ctx, input.ParentID)
	if err != nil {
		return nil, err
	}

	icon := input.Icon
	if icon == "" {
		icon = models.DefaultSectionIcon
	}

	now := time.Now()
	section := models.Section{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Icon:        icon,
		Order:       order,
		ParentID:    input.ParentID,
		IsActive:    true,
		CreatedByID: input.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, section); err != nil {
		return nil, err
	}

	return &section, nil
}

// availableSlug derives a slug from name and probes the collection until an
// unused one is found. excludeID skips the section being renamed so its own
// slug does not count as a collision.
func (s *Store) availableSlug(ctx context.Context, name string, excludeID *primitive.ObjectID) (string, error) {
	base := slugify.Make(name)

	candidate := base
	for n := 1; n <= slugAttempts; n++ {
		taken, err := s.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = slugify.WithSuffix(base, n)
	}
	return "", fmt.Errorf("no available slug for %q after %d attempts", name, slugAttempts)
}

// nextOrder returns one past the highest order among parentID's children.
func (s *Store) nextOrder(ctx context.Context, parentID *primitive.ObjectID) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	var last models.Section
	err := s.c.FindOne(ctx, bson.M{"parent_id": parentID}, opts).Decode(&last)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Order + 1, nil
}

// GetByID retrieves a section by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Section, error) {
	var section models.Section
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&section); err != nil {
		return nil, err
	}
	return &section, nil
}

// GetBySlug retrieves a section by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Section, error) {
	var section models.Section
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&section); err != nil {
		return nil, err
	}
	return &section, nil
}

// UpdateInput contains the input for updating a section. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Icon        *string
}

// Update updates a section. Renaming recomputes the slug, so links built
// from the old slug stop resolving.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now()}

	if input.Name != nil {
		slug, err := s.availableSlug(ctx, *input.Name, &id)
		if err != nil {
			return err
		}
		set["name"] = *input.Name
		set["slug"] = slug
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Icon != nil {
		set["icon"] = *input.Icon
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// SetActive toggles a section's visibility flag.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now(),
	}})
	return err
}

// Delete removes a section document. Referential guards (children, article
// references) are the consistency coordinator's responsibility; this is the
// raw delete.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListByParent returns parentID's children sorted by order. Pass nil for
// root sections. When activeOnly is true, inactive sections are skipped.
func (s *Store) ListByParent(ctx context.Context, parentID *primitive.ObjectID, activeOnly bool) ([]models.Section, error) {
	filter := bson.M{"parent_id": parentID}
	if activeOnly {
		filter["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sections []models.Section
	if err := cursor.All(ctx, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// ListAll returns every section, roots first, then by order.
func (s *Store) ListAll(ctx context.Context) ([]models.Section, error) {
	opts := options.Find().SetSort(bson.D{{Key: "parent_id", Value: 1}, {Key: "order", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sections []models.Section
	if err := cursor.All(ctx, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// Tree returns the root sections with their children populated, both levels
// sorted by order. When activeOnly is true, inactive sections and their
// children are skipped.
func (s *Store) Tree(ctx context.Context, activeOnly bool) ([]models.Section, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[primitive.ObjectID][]models.Section)
	var roots []models.Section
	for _, sec := range all {
		if activeOnly && !sec.IsActive {
			continue
		}
		if sec.IsRoot() {
			roots = append(roots, sec)
		} else {
			childrenOf[*sec.ParentID] = append(childrenOf[*sec.ParentID], sec)
		}
	}

	for i := range roots {
		roots[i].Children = childrenOf[roots[i].ID]
	}
	return roots, nil
}

// HasChildren checks if a section has any child sections.
func (s *Store) HasChildren(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"parent_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SlugExists checks if any section already uses slug. Pass excludeID to
// exclude a specific section (useful for renames).
func (s *Store) SlugExists(ctx context.Context, slug string, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetArticleCount writes the denormalized article count for a section.
func (s *Store) SetArticleCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"article_count": count,
	}})
	return err
}

// Siblings returns all sections sharing the given section's parent,
// including the section itself, sorted by order.
func (s *Store) Siblings(ctx context.Context, id primitive.ObjectID) ([]models.Section, error) {
	sec, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ListByParent(ctx, sec.ParentID, false)
}

// SwapOrder exchanges the order values of two sections. Used by the sibling
// reorder protocol, which moves a section one position at a time.
func (s *Store) SwapOrder(ctx context.Context, a, b primitive.ObjectID) error {
	secA, err := s.GetByID(ctx, a)
	if err != nil {
		return err
	}
	secB, err := s.GetByID(ctx, b)
	if err != nil {
		return err
	}

	now := time.Now()
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": a}, bson.M{"$set": bson.M{
		"order":      secB.Order,
		"updated_at": now,
	}}); err != nil {
		return err
	}
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": b}, bson.M{"$set": bson.M{
		"order":      secA.Order,
		"updated_at": now,
	}})
	return err
}
