package articles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/article"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/bookmark"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/comment"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/section"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/consistency"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/adil-N/KnowIThubv2-sub003/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fixture struct {
	router   http.Handler
	articles *article.Store
	sections *section.Store
	comments *comment.Store
	section  *models.Section
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sections := section.New(db)
	articles := article.New(db)
	comments := comment.New(db)
	coord := consistency.New(sections, articles, comments, bookmark.New(db), nil, zap.NewNop())

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	sec, err := sections.Create(ctx, section.CreateInput{Name: "General", CreatedByID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}

	h := NewHandler(articles, sections, coord, zap.NewNop())
	return &fixture{
		router:   Routes(h, sm),
		articles: articles,
		sections: sections,
		comments: comments,
		section:  sec,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createArticle(t *testing.T, user testutil.TestUser, body map[string]any) models.Article {
	t.Helper()
	if _, ok := body["sections"]; !ok {
		body["sections"] = []string{f.section.ID.Hex()}
	}
	rec := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/", body, user))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create article: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
	var created models.Article
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode article: %v", err)
	}
	return created
}

func TestCreateArticle(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()

	t.Run("valid create", func(t *testing.T) {
		created := f.createArticle(t, author, map[string]any{
			"title":   "VPN Setup Guide",
			"content": "<p>Install the client.</p><script>alert(1)</script>",
			"tags":    []string{"VPN", "vpn", "Remote Access"},
		})

		if created.ArticleID != "AN-00100" {
			t.Errorf("article_id = %q, want AN-00100", created.ArticleID)
		}
		if strings.Contains(created.Content, "<script>") {
			t.Errorf("content not sanitized: %q", created.Content)
		}
		if len(created.Tags) != 2 {
			t.Errorf("tags = %v, want deduplicated pair", created.Tags)
		}
		if len(created.AutoTags) == 0 {
			t.Error("auto tags not derived from title")
		}

		ctx, cancel := testutil.TestContext()
		defer cancel()
		sec, _ := f.sections.GetByID(ctx, f.section.ID)
		if sec.ArticleCount != 1 {
			t.Errorf("section article_count = %d, want 1", sec.ArticleCount)
		}
	})

	t.Run("no sections", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{
			"title": "Orphan", "content": "x", "sections": []string{},
		}, author)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("inactive section rejected", func(t *testing.T) {
		ctx, cancel := testutil.TestContext()
		defer cancel()
		inactive, _ := f.sections.Create(ctx, section.CreateInput{Name: "Retired", CreatedByID: primitive.NewObjectID()})
		_ = f.sections.SetActive(ctx, inactive.ID, false)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{
			"title": "t", "content": "x", "sections": []string{inactive.ID.Hex()},
		}, author)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("temporary needs a duration", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{
			"title": "t", "content": "x", "isTemporary": true,
			"sections": []string{f.section.ID.Hex()},
		}, author)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("temporary with duration gets expiry", func(t *testing.T) {
		created := f.createArticle(t, author, map[string]any{
			"title": "Maintenance tonight", "content": "x",
			"isTemporary": true, "temporaryDuration": "72h",
		})
		if created.ExpiresAt == nil {
			t.Fatal("expires_at not set on temporary article")
		}
	})
}

func TestFlashInformationRequiresTemporary(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	flash, err := f.sections.Create(ctx, section.CreateInput{Name: "Flash Information", CreatedByID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("create flash section: %v", err)
	}
	if flash.Slug != models.FlashInformationSlug {
		t.Fatalf("flash slug = %q, want %q", flash.Slug, models.FlashInformationSlug)
	}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{
		"title": "Permanent flash", "content": "x",
		"sections": []string{flash.ID.Hex()},
	}, author)
	if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-temporary flash article", rec.Code)
	}

	ok := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{
		"title": "Outage notice", "content": "x",
		"sections":    []string{flash.ID.Hex()},
		"isTemporary": true, "temporaryDuration": "1w",
	}, author)
	if rec := f.do(t, ok); rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201 for temporary flash article (body %s)", rec.Code, rec.Body.String())
	}
}

func TestGetArticle(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	created := f.createArticle(t, author, map[string]any{"title": "Lookup", "content": "x"})

	for _, ref := range []string{created.ID.Hex(), created.ArticleID, strings.ToLower(created.ArticleID)} {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+ref, author)
		if rec := f.do(t, req); rec.Code != http.StatusOK {
			t.Errorf("GET /%s status = %d, want 200", ref, rec.Code)
		}
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/AN-99999", author)
	if rec := f.do(t, req); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateArticle(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	created := f.createArticle(t, author, map[string]any{"title": "Original", "content": "<p>old</p>"})

	t.Run("other user forbidden", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+created.ID.Hex(),
			map[string]any{"title": "Hijacked"}, testutil.RegularUser())
		if rec := f.do(t, req); rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("author edits with sanitization", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+created.ID.Hex(),
			map[string]any{"content": `<p onclick="x()">new</p>`}, author)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
		var updated models.Article
		if err := json.Unmarshal(data, &updated); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if strings.Contains(updated.Content, "onclick") {
			t.Errorf("content not sanitized: %q", updated.Content)
		}
		if !strings.Contains(updated.Content, "new") {
			t.Errorf("content = %q, want updated text", updated.Content)
		}
	})

	t.Run("admin may edit anyone's article", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+created.ID.Hex(),
			map[string]any{"title": "Admin Retitle"}, testutil.AdminUser())
		if rec := f.do(t, req); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
	})
}

func TestUpdateExpiryFields(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	permanent := f.createArticle(t, author, map[string]any{"title": "Evergreen", "content": "x"})

	t.Run("temporary without duration rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+permanent.ID.Hex(),
			map[string]any{"isTemporary": true}, author)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		ctx, cancel := testutil.TestContext()
		defer cancel()
		got, _ := f.articles.GetByID(ctx, permanent.ID)
		if got.IsTemporary {
			t.Error("IsTemporary = true after rejected update")
		}
	})

	t.Run("duration on permanent article rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+permanent.ID.Hex(),
			map[string]any{"temporaryDuration": "72h"}, author)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		ctx, cancel := testutil.TestContext()
		defer cancel()
		got, _ := f.articles.GetByID(ctx, permanent.ID)
		if got.ExpiresAt != nil || got.TemporaryDuration != "" {
			t.Errorf("expiry fields set on permanent article: expires_at=%v duration=%q",
				got.ExpiresAt, got.TemporaryDuration)
		}
	})

	t.Run("flag with duration converts", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+permanent.ID.Hex(),
			map[string]any{"isTemporary": true, "temporaryDuration": "72h"}, author)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
		var updated models.Article
		if err := json.Unmarshal(data, &updated); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !updated.IsTemporary || updated.ExpiresAt == nil {
			t.Errorf("IsTemporary = %v, ExpiresAt = %v, want temporary with expiry",
				updated.IsTemporary, updated.ExpiresAt)
		}
	})

	t.Run("invalid duration on temporary article rejected", func(t *testing.T) {
		temp := f.createArticle(t, author, map[string]any{
			"title": "Short lived", "content": "x",
			"isTemporary": true, "temporaryDuration": "1w",
		})
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+temp.ID.Hex(),
			map[string]any{"temporaryDuration": "2y"}, author)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestUpdateFlashArticleStaysTemporary(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	flash, err := f.sections.Create(ctx, section.CreateInput{Name: "Flash Information", CreatedByID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("create flash section: %v", err)
	}
	created := f.createArticle(t, author, map[string]any{
		"title": "Outage notice", "content": "x",
		"sections":    []string{flash.ID.Hex()},
		"isTemporary": true, "temporaryDuration": "72h",
	})

	t.Run("cannot become permanent in place", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+created.ID.Hex(),
			map[string]any{"isTemporary": false}, author)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		got, _ := f.articles.GetByID(ctx, created.ID)
		if !got.IsTemporary {
			t.Error("IsTemporary = false after rejected conversion")
		}
	})

	t.Run("moving out allows becoming permanent", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/"+created.ID.Hex(),
			map[string]any{"isTemporary": false, "sections": []string{f.section.ID.Hex()}}, author)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		got, _ := f.articles.GetByID(ctx, created.ID)
		if got.IsTemporary || got.ExpiresAt != nil {
			t.Errorf("IsTemporary = %v, ExpiresAt = %v, want permanent with no expiry",
				got.IsTemporary, got.ExpiresAt)
		}
	})
}

func TestViewAndRead(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	created := f.createArticle(t, author, map[string]any{"title": "Tracked", "content": "x"})
	reader := testutil.RegularUser()

	for i := 0; i < 2; i++ {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+created.ID.Hex()+"/view", reader)
		if rec := f.do(t, req); rec.Code != http.StatusOK {
			t.Fatalf("view status = %d, want 200", rec.Code)
		}
	}
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+created.ArticleID+"/read", reader)
	if rec := f.do(t, req); rec.Code != http.StatusOK {
		t.Fatalf("read status = %d, want 200", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := f.articles.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Views != 1 {
		t.Errorf("views = %d, want 1 after repeat views by one user", got.Views)
	}
	if len(got.Reads) != 1 {
		t.Errorf("reads = %d entries, want 1", len(got.Reads))
	}

	missing := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+primitive.NewObjectID().Hex()+"/view", reader)
	if rec := f.do(t, missing); rec.Code != http.StatusNotFound {
		t.Errorf("view on missing article status = %d, want 404", rec.Code)
	}
}

func TestHideArticle(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	created := f.createArticle(t, author, map[string]any{"title": "To Hide", "content": "x"})

	t.Run("regular user cannot toggle", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/"+created.ID.Hex()+"/hidden",
			map[string]any{"hidden": true}, author)
		if rec := f.do(t, req); rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin hides, listing and count follow", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/"+created.ID.Hex()+"/hidden",
			map[string]any{"hidden": true}, testutil.AdminUser())
		if rec := f.do(t, req); rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}

		other := testutil.RegularUser()
		get := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+created.ID.Hex(), other)
		if rec := f.do(t, get); rec.Code != http.StatusNotFound {
			t.Errorf("hidden article GET by other user status = %d, want 404", rec.Code)
		}

		own := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+created.ID.Hex(), author)
		if rec := f.do(t, own); rec.Code != http.StatusOK {
			t.Errorf("hidden article GET by author status = %d, want 200", rec.Code)
		}

		ctx, cancel := testutil.TestContext()
		defer cancel()
		sec, _ := f.sections.GetByID(ctx, f.section.ID)
		if sec.ArticleCount != 0 {
			t.Errorf("section article_count = %d, want 0 after hiding", sec.ArticleCount)
		}
	})
}

func TestDeleteArticleEndpoint(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	created := f.createArticle(t, author, map[string]any{"title": "Doomed", "content": "x"})

	ctx, cancel := testutil.TestContext()
	defer cancel()
	authorID, _ := primitive.ObjectIDFromHex(author.ID)
	if _, err := f.comments.Create(ctx, comment.CreateInput{
		ArticleID: created.ID, AuthorID: authorID, Content: "first",
	}); err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	t.Run("other user forbidden", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+created.ID.Hex(), testutil.RegularUser())
		if rec := f.do(t, req); rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("author deletes with cascade", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+created.ID.Hex(), author)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}

		if _, err := f.articles.GetByID(ctx, created.ID); err != mongo.ErrNoDocuments {
			t.Error("article still present after delete")
		}
		remaining, _ := f.comments.CountByArticle(ctx, created.ID)
		if remaining != 0 {
			t.Errorf("comments remaining = %d, want 0", remaining)
		}
		sec, _ := f.sections.GetByID(ctx, f.section.ID)
		if sec.ArticleCount != 0 {
			t.Errorf("section article_count = %d, want 0", sec.ArticleCount)
		}
	})
}

func TestListBySection(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	for _, title := range []string{"First", "Second", "Third"} {
		f.createArticle(t, author, map[string]any{"title": title, "content": "x"})
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet,
		"/section/"+f.section.ID.Hex()+"?limit=2&page=1", author)
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
	var list []models.Article
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("page 1 = %d articles, want 2", len(list))
	}
}

func TestExpiringSoon(t *testing.T) {
	f := setup(t)
	author := testutil.RegularUser()
	f.createArticle(t, author, map[string]any{
		"title": "Short lived", "content": "x",
		"isTemporary": true, "temporaryDuration": "72h",
	})
	f.createArticle(t, author, map[string]any{"title": "Permanent", "content": "x"})

	t.Run("regular user forbidden", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/expiring-soon", author)
		if rec := f.do(t, req); rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin sees expiring articles", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/expiring-soon?window=96", testutil.AdminUser())
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
		var list []models.Article
		if err := json.Unmarshal(data, &list); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("expiring = %d articles, want 1", len(list))
		}
	})
}
