// Package consistency coordinates multi-collection operations on the
// section tree and the articles that reference it: guarded section deletion,
// article teardown, the expiration sweep, sibling reordering, and upkeep of
// the denormalized per-section article counts.
//
// There are no cross-collection transactions here. Every operation is
// ordered so that a failure part-way leaves the data in a state a retry (or
// the nightly rebuild) corrects.
package consistency

import (
	"context"
	"strings"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/article"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/bookmark"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/comment"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/section"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/apperr"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Direction of a sibling reorder.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// Coordinator owns the cross-collection consistency rules.
type Coordinator struct {
	sections  *section.Store
	articles  *article.Store
	comments  *comment.Store
	bookmarks *bookmark.Store
	files     storage.Store
	logger    *zap.Logger
}

// New creates a Coordinator. files may be nil when no file storage backend
// is configured; attachment cleanup is skipped in that case.
func New(
	sections *section.Store,
	articles *article.Store,
	comments *comment.Store,
	bookmarks *bookmark.Store,
	files storage.Store,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		sections:  sections,
		articles:  articles,
		comments:  comments,
		bookmarks: bookmarks,
		files:     files,
		logger:    logger,
	}
}

// DeletionBlockers reports what stands in the way of deleting a section.
type DeletionBlockers struct {
	ArticleCount int64 `json:"article_count"`
	ChildCount   int64 `json:"child_count"`
}

// Blocked reports whether deletion is currently disallowed.
func (b DeletionBlockers) Blocked() bool {
	return b.ArticleCount > 0 || b.ChildCount > 0
}

// CanDeleteSection returns the counts that block deleting a section: the
// articles referencing it (hidden included) and its child sections. Both
// must be zero for deletion to proceed.
func (c *Coordinator) CanDeleteSection(ctx context.Context, id primitive.ObjectID) (DeletionBlockers, error) {
	var blockers DeletionBlockers

	articleCount, err := c.articles.CountBySectionAll(ctx, id)
	if err != nil {
		return blockers, apperr.Infra(err, "count section articles")
	}
	blockers.ArticleCount = articleCount

	children, err := c.sections.ListByParent(ctx, &id, false)
	if err != nil {
		return blockers, apperr.Infra(err, "list child sections")
	}
	blockers.ChildCount = int64(len(children))

	return blockers, nil
}

// DeleteSection permanently removes a section. The acting user must re-type
// their account email as confirmation; the comparison ignores case and
// surrounding whitespace. Deletion is refused while articles still reference
// the section or child sections exist.
//
// Remaining section references are pulled from all articles before the
// delete. The pull is normally a no-op given the guard, but it closes the
// race with concurrent article saves, and it makes a retry after a partial
// failure converge.
func (c *Coordinator) DeleteSection(ctx context.Context, id primitive.ObjectID, actorEmail, confirmEmail string) error {
	if !emailMatches(actorEmail, confirmEmail) {
		return apperr.Guardf("confirmation email does not match your account email")
	}

	sec, err := c.sections.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFoundf("section not found")
		}
		return apperr.Infra(err, "load section")
	}

	blockers, err := c.CanDeleteSection(ctx, id)
	if err != nil {
		return err
	}
	if blockers.Blocked() {
		return apperr.Guardf("section %q still has %d article(s) and %d subsection(s)",
			sec.Name, blockers.ArticleCount, blockers.ChildCount)
	}

	pulled, err := c.articles.PullSectionRef(ctx, id)
	if err != nil {
		return apperr.Infra(err, "detach section references")
	}
	if pulled > 0 {
		c.logger.Warn("detached section references during delete",
			zap.String("section", sec.Slug),
			zap.Int64("articles", pulled))
	}

	if err := c.sections.Delete(ctx, id); err != nil {
		return apperr.Infra(err, "delete section")
	}

	c.logger.Info("section deleted",
		zap.String("section", sec.Slug),
		zap.String("id", id.Hex()))
	return nil
}

func emailMatches(actorEmail, confirmEmail string) bool {
	return strings.EqualFold(strings.TrimSpace(actorEmail), strings.TrimSpace(confirmEmail))
}

// DeleteArticle permanently removes an article and its dependents:
// attachment files (best-effort), comments, bookmarks, then the article
// itself, followed by a count refresh for its sections.
func (c *Coordinator) DeleteArticle(ctx context.Context, id primitive.ObjectID) error {
	art, err := c.articles.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFoundf("article not found")
		}
		return apperr.Infra(err, "load article")
	}

	c.deleteArticleFiles(ctx, art)

	if _, err := c.comments.DeleteByArticle(ctx, id); err != nil {
		return apperr.Infra(err, "delete article comments")
	}
	if _, err := c.bookmarks.DeleteByArticle(ctx, id); err != nil {
		return apperr.Infra(err, "delete article bookmarks")
	}

	if err := c.articles.Delete(ctx, id); err != nil {
		return apperr.Infra(err, "delete article")
	}

	c.RefreshArticleCounts(ctx, art.Sections)

	c.logger.Info("article deleted",
		zap.String("article_id", art.ArticleID),
		zap.String("id", id.Hex()))
	return nil
}

// deleteArticleFiles removes attachment bytes from storage. Failures are
// logged and skipped; orphaned files must never block the delete.
func (c *Coordinator) deleteArticleFiles(ctx context.Context, art *models.Article) {
	if c.files == nil {
		return
	}
	for _, f := range art.Files {
		if f.Path == "" {
			continue
		}
		if err := c.files.Delete(ctx, f.Path); err != nil {
			c.logger.Warn("failed to delete attachment file",
				zap.String("article_id", art.ArticleID),
				zap.String("path", f.Path),
				zap.Error(err))
		}
	}
}

// RefreshArticleCounts recomputes the cached article count for the given
// sections. Best-effort: a section that fails is logged and skipped, since
// the rebuild job reconciles any drift.
func (c *Coordinator) RefreshArticleCounts(ctx context.Context, sectionIDs []primitive.ObjectID) {
	for _, id := range sectionIDs {
		count, err := c.articles.CountBySection(ctx, id)
		if err != nil {
			c.logger.Warn("failed to count articles for section",
				zap.String("section_id", id.Hex()),
				zap.Error(err))
			continue
		}
		if err := c.sections.SetArticleCount(ctx, id, count); err != nil {
			c.logger.Warn("failed to store section article count",
				zap.String("section_id", id.Hex()),
				zap.Error(err))
		}
	}
}

// RebuildAllCounts walks every section and recomputes its article count from
// scratch. This is the recovery path for counter drift and runs daily as a
// background job.
func (c *Coordinator) RebuildAllCounts(ctx context.Context) error {
	sections, err := c.sections.ListAll(ctx)
	if err != nil {
		return apperr.Infra(err, "list sections")
	}

	ids := make([]primitive.ObjectID, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.ID)
	}
	c.RefreshArticleCounts(ctx, ids)
	return nil
}

// SweepExpired deletes temporary articles whose expiration has passed, along
// with their files, comments and bookmarks, and refreshes the counts of the
// sections they referenced. Returns the number of articles removed.
func (c *Coordinator) SweepExpired(ctx context.Context) (int64, error) {
	expired, err := c.articles.ListExpired(ctx)
	if err != nil {
		return 0, apperr.Infra(err, "list expired articles")
	}
	if len(expired) == 0 {
		return 0, nil
	}

	touched := make(map[primitive.ObjectID]struct{})
	for _, art := range expired {
		c.deleteArticleFiles(ctx, &art)
		if _, err := c.comments.DeleteByArticle(ctx, art.ID); err != nil {
			c.logger.Warn("failed to delete comments of expired article",
				zap.String("article_id", art.ArticleID),
				zap.Error(err))
		}
		if _, err := c.bookmarks.DeleteByArticle(ctx, art.ID); err != nil {
			c.logger.Warn("failed to delete bookmarks of expired article",
				zap.String("article_id", art.ArticleID),
				zap.Error(err))
		}
		for _, sid := range art.Sections {
			touched[sid] = struct{}{}
		}
	}

	deleted, err := c.articles.CleanupExpired(ctx)
	if err != nil {
		return 0, apperr.Infra(err, "delete expired articles")
	}

	ids := make([]primitive.ObjectID, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	c.RefreshArticleCounts(ctx, ids)

	return deleted, nil
}

// Reorder moves a section one position up or down among its siblings by
// swapping order values with its neighbor. Moving past either end is
// rejected.
func (c *Coordinator) Reorder(ctx context.Context, id primitive.ObjectID, direction string) error {
	if direction != MoveUp && direction != MoveDown {
		return apperr.Validationf("direction must be %q or %q", MoveUp, MoveDown)
	}

	siblings, err := c.sections.Siblings(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFoundf("section not found")
		}
		return apperr.Infra(err, "load sibling sections")
	}

	idx := -1
	for i, sib := range siblings {
		if sib.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperr.NotFoundf("section not found")
	}

	var neighbor int
	switch direction {
	case MoveUp:
		if idx == 0 {
			return apperr.Guardf("section is already first")
		}
		neighbor = idx - 1
	case MoveDown:
		if idx == len(siblings)-1 {
			return apperr.Guardf("section is already last")
		}
		neighbor = idx + 1
	}

	if err := c.sections.SwapOrder(ctx, siblings[idx].ID, siblings[neighbor].ID); err != nil {
		return apperr.Infra(err, "swap section order")
	}
	return nil
}
