// Package article provides storage for knowledge-base articles.
package article

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/storeutil"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/expiry"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/tags"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// firstArticleSeq is the sequence number of the very first article.
const firstArticleSeq = 100

// Store provides access to the articles collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new article store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("articles"),
	}
}

// CreateInput contains the input for creating an article.
type CreateInput struct {
	Title             string
	Content           string
	AuthorID          primitive.ObjectID
	Sections          []primitive.ObjectID
	Files             []models.ArticleFile
	Tags              []string
	AutoTags          []string
	IsTemporary       bool
	TemporaryDuration string
}

// Create creates a new article with a freshly allocated article ID. Tags are
// normalized; for temporary articles the expiration time is derived from the
// duration.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Article, error) {
	now := time.Now()

	article := models.Article{
		ID:                primitive.NewObjectID(),
		Title:             input.Title,
		Content:           input.Content,
		AuthorID:          input.AuthorID,
		Sections:          input.Sections,
		Files:             input.Files,
		Tags:              tags.Normalize(input.Tags),
		AutoTags:          tags.Normalize(input.AutoTags),
		IsTemporary:       input.IsTemporary,
		LastContentUpdate: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if len(article.AutoTags) > 0 {
		article.TagExtraction = &models.TagExtraction{Method: "title-keywords", ExtractedAt: now}
	}

	if input.IsTemporary {
		expiresAt, err := expiry.At(input.TemporaryDuration, now)
		if err != nil {
			return nil, err
		}
		article.TemporaryDuration = input.TemporaryDuration
		article.ExpiresAt = &expiresAt
	}

	// Unique index on article_id backs the allocation; on a lost race we
	// re-read the sequence and retry once.
	for attempt := 0; attempt < 2; attempt++ {
		articleID, err := s.nextArticleID(ctx)
		if err != nil {
			return nil, err
		}
		article.ArticleID = articleID

		_, err = s.c.InsertOne(ctx, article)
		if err == nil {
			return &article, nil
		}
		if !storeutil.IsDuplicateKey(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("article id allocation lost race twice")
}

// nextArticleID returns the successor of the highest allocated article ID,
// or the initial AN-00100 on an empty collection.
func (s *Store) nextArticleID(ctx context.Context) (string, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "article_id", Value: -1}}).
		SetProjection(bson.M{"article_id": 1})

	var last struct {
		ArticleID string `bson:"article_id"`
	}
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err == mongo.ErrNoDocuments {
		return formatArticleID(firstArticleSeq), nil
	}
	if err != nil {
		return "", err
	}

	seq, err := parseArticleID(last.ArticleID)
	if err != nil {
		return "", err
	}
	return formatArticleID(seq + 1), nil
}

func formatArticleID(seq int) string {
	return fmt.Sprintf("AN-%05d", seq)
}

func parseArticleID(id string) (int, error) {
	numeric, ok := strings.CutPrefix(id, "AN-")
	if !ok {
		return 0, fmt.Errorf("malformed article id %q", id)
	}
	seq, err := strconv.Atoi(numeric)
	if err != nil {
		return 0, fmt.Errorf("malformed article id %q: %w", id, err)
	}
	return seq, nil
}

// GetByID retrieves an article by its Mongo ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	var article models.Article
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&article); err != nil {
		return nil, err
	}
	return &article, nil
}

// GetByArticleID retrieves an article by its human-facing AN-XXXXX ID.
func (s *Store) GetByArticleID(ctx context.Context, articleID string) (*models.Article, error) {
	var article models.Article
	if err := s.c.FindOne(ctx, bson.M{"article_id": articleID}).Decode(&article); err != nil {
		return nil, err
	}
	return &article, nil
}

// UpdateInput contains the input for updating an article. Nil fields are
// left unchanged.
type UpdateInput struct {
	Title             *string
	Content           *string
	Sections          []primitive.ObjectID
	Files             []models.ArticleFile
	Tags              []string
	AutoTags          []string
	IsTemporary       *bool
	TemporaryDuration *string
}

// Update updates an article. LastContentUpdate is bumped only when title,
// content or files change. Toggling IsTemporary off clears the expiry triad;
// changing the duration recomputes the expiration from now.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	now := time.Now()
	set := bson.M{"updated_at": now}
	unset := bson.M{}

	contentChanged := false
	if input.Title != nil {
		set["title"] = *input.Title
		contentChanged = true
	}
	if input.Content != nil {
		set["content"] = *input.Content
		contentChanged = true
	}
	if input.Files != nil {
		set["files"] = input.Files
		contentChanged = true
	}
	if contentChanged {
		set["last_content_update"] = now
	}

	if input.Sections != nil {
		set["sections"] = input.Sections
	}
	if input.Tags != nil {
		set["tags"] = tags.Normalize(input.Tags)
	}
	if input.AutoTags != nil {
		set["auto_tags"] = tags.Normalize(input.AutoTags)
		set["tag_extraction"] = models.TagExtraction{Method: "title-keywords", ExtractedAt: now}
	}

	if input.IsTemporary != nil {
		set["is_temporary"] = *input.IsTemporary
		if !*input.IsTemporary {
			unset["temporary_duration"] = ""
			unset["expires_at"] = ""
		}
	}
	if input.TemporaryDuration != nil && (input.IsTemporary == nil || *input.IsTemporary) {
		expiresAt, err := expiry.At(*input.TemporaryDuration, now)
		if err != nil {
			return err
		}
		set["temporary_duration"] = *input.TemporaryDuration
		set["expires_at"] = expiresAt
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// RecordView bumps the view counter once per distinct user. Repeat views by
// the same user are ignored.
func (s *Store) RecordView(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "viewed_by.user_id": bson.M{"$ne": userID}},
		bson.M{
			"$inc":  bson.M{"views": 1},
			"$push": bson.M{"viewed_by": models.ArticleView{UserID: userID, Timestamp: time.Now()}},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either already viewed or the article is gone; distinguish so
		// callers can 404 on missing articles.
		count, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return mongo.ErrNoDocuments
		}
	}
	return nil
}

// RecordRead marks the article read by the user, updating the timestamp on
// repeat reads.
func (s *Store) RecordRead(ctx context.Context, id, userID primitive.ObjectID) error {
	now := time.Now()

	// Refresh an existing read entry first; if none matched, push a new one.
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "reads.user_id": userID},
		bson.M{"$set": bson.M{"reads.$.read_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"reads": models.ArticleRead{UserID: userID, ReadAt: now}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetHidden toggles the soft-delete flag.
func (s *Store) SetHidden(ctx context.Context, id primitive.ObjectID, hidden bool) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"hidden":     hidden,
		"updated_at": time.Now(),
	}})
	return err
}

// Delete removes an article document. File and comment cleanup is the
// consistency coordinator's responsibility.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListBySection returns the non-hidden articles referencing a section,
// newest first, paginated.
func (s *Store) ListBySection(ctx context.Context, sectionID primitive.ObjectID, limit, page int64) ([]models.Article, error) {
	filter := bson.M{"sections": sectionID, "hidden": false}

	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// CountBySection returns the number of non-hidden articles referencing a
// section. This is the ground truth behind the denormalized section counter.
func (s *Store) CountBySection(ctx context.Context, sectionID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"sections": sectionID, "hidden": false})
}

// CountBySectionAll returns the number of articles referencing a section,
// hidden included. The section deletion guard uses this so a hidden article
// still blocks deletion.
func (s *Store) CountBySectionAll(ctx context.Context, sectionID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"sections": sectionID})
}

// ListByAuthor returns an author's articles, newest first, paginated.
func (s *Store) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, limit, page int64) ([]models.Article, error) {
	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.c.Find(ctx, bson.M{"author_id": authorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// ListExpiringSoon returns temporary articles expiring within the window,
// soonest first.
func (s *Store) ListExpiringSoon(ctx context.Context, window time.Duration) ([]models.Article, error) {
	now := time.Now()
	filter := bson.M{
		"is_temporary": true,
		"expires_at":   bson.M{"$gt": now, "$lte": now.Add(window)},
	}

	opts := options.Find().SetSort(bson.D{{Key: "expires_at", Value: 1}})
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// ListExpired returns temporary articles whose expiration has passed.
func (s *Store) ListExpired(ctx context.Context) ([]models.Article, error) {
	cursor, err := s.c.Find(ctx, bson.M{
		"is_temporary": true,
		"expires_at":   bson.M{"$lte": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// PullSectionRef removes every reference to a deleted section from all
// articles. Articles themselves are never deleted by this; an article may
// legitimately end up with an empty section list.
func (s *Store) PullSectionRef(ctx context.Context, sectionID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"sections": sectionID},
		bson.M{"$pull": bson.M{"sections": sectionID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CleanupExpired deletes temporary articles whose expiration has passed and
// returns the count.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"is_temporary": true,
		"expires_at":   bson.M{"$lte": time.Now()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DistinctSectionIDs returns every section id referenced by at least one
// article. Used by the count rebuild job.
func (s *Store) DistinctSectionIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "sections", bson.M{})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
