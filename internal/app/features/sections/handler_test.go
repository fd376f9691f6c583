package sections

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	sections *section.Store
	articles *article.Store
	db       *mongo.Database
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sections := section.New(db)
	articles := article.New(db)
	coord := consistency.New(sections, articles, comment.New(db), bookmark.New(db), nil, zap.NewNop())

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	h := NewHandler(sections, coord, zap.NewNop())
	return &fixture{
		router:   Routes(h, sm),
		sections: sections,
		articles: articles,
		db:       db,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestTree(t *testing.T) {
	f := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	active, _ := f.sections.Create(ctx, section.CreateInput{Name: "Visible", CreatedByID: creator})
	inactive, _ := f.sections.Create(ctx, section.CreateInput{Name: "Hidden", CreatedByID: creator})
	_ = f.sections.SetActive(ctx, inactive.ID, false)

	t.Run("anonymous is rejected", func(t *testing.T) {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("regular user sees active only", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.RegularUser())
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
		var tree []models.Section
		if err := json.Unmarshal(data, &tree); err != nil {
			t.Fatalf("decode tree: %v", err)
		}
		if len(tree) != 1 || tree[0].ID != active.ID {
			t.Errorf("tree = %d roots, want only the active one", len(tree))
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AdminUser())
		rec := f.do(t, req)
		_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
		var tree []models.Section
		if err := json.Unmarshal(data, &tree); err != nil {
			t.Fatalf("decode tree: %v", err)
		}
		if len(tree) != 2 {
			t.Errorf("tree = %d roots, want 2", len(tree))
		}
	})
}

func TestCreate(t *testing.T) {
	f := setup(t)
	admin := testutil.AdminUser()

	t.Run("regular user forbidden", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"name": "X"}, testutil.RegularUser())
		if rec := f.do(t, req); rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("valid create", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{
			"name":        "Network & VPN",
			"description": "Connectivity help",
		}, admin)
		rec := f.do(t, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
		}
		_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
		var created models.Section
		if err := json.Unmarshal(data, &created); err != nil {
			t.Fatalf("decode section: %v", err)
		}
		if created.Slug != "network-vpn" {
			t.Errorf("slug = %q, want %q", created.Slug, "network-vpn")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"description": "x"}, admin)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown parent", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{
			"name":     "Orphan",
			"parentId": primitive.NewObjectID().Hex(),
		}, admin)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("nesting beyond two levels", func(t *testing.T) {
		ctx, cancel := testutil.TestContext()
		defer cancel()
		root, _ := f.sections.Create(ctx, section.CreateInput{Name: "Deep Root", CreatedByID: primitive.NewObjectID()})
		child, _ := f.sections.Create(ctx, section.CreateInput{Name: "Deep Child", ParentID: &root.ID, CreatedByID: primitive.NewObjectID()})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{
			"name":     "Too Deep",
			"parentId": child.ID.Hex(),
		}, admin)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestReorderEndpoint(t *testing.T) {
	f := setup(t)
	admin := testutil.AdminUser()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	a, _ := f.sections.Create(ctx, section.CreateInput{Name: "A", CreatedByID: creator})
	b, _ := f.sections.Create(ctx, section.CreateInput{Name: "B", CreatedByID: creator})

	t.Run("move up succeeds", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/"+b.ID.Hex()+"/reorder",
			map[string]string{"direction": "up"}, admin)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		gotA, _ := f.sections.GetByID(ctx, a.ID)
		gotB, _ := f.sections.GetByID(ctx, b.ID)
		if gotB.Order >= gotA.Order {
			t.Errorf("orders after move: a=%d b=%d, want b before a", gotA.Order, gotB.Order)
		}
	})

	t.Run("boundary move rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/"+b.ID.Hex()+"/reorder",
			map[string]string{"direction": "up"}, admin)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bad direction", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/"+a.ID.Hex()+"/reorder",
			map[string]string{"direction": "sideways"}, admin)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeleteEndpoint(t *testing.T) {
	f := setup(t)
	admin := testutil.AdminUser()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()

	t.Run("wrong confirmation email", func(t *testing.T) {
		sec, _ := f.sections.Create(ctx, section.CreateInput{Name: "Keep Me", CreatedByID: creator})
		req := testutil.NewJSONRequest(t, http.MethodDelete, "/"+sec.ID.Hex(),
			map[string]string{"confirmEmail": "wrong@test.com"}, admin)
		if rec := f.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("successful delete", func(t *testing.T) {
		sec, _ := f.sections.Create(ctx, section.CreateInput{Name: "Remove Me", CreatedByID: creator})
		req := testutil.NewJSONRequest(t, http.MethodDelete, "/"+sec.ID.Hex(),
			map[string]string{"confirmEmail": admin.Email}, admin)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		if _, err := f.sections.GetByID(ctx, sec.ID); err != mongo.ErrNoDocuments {
			t.Error("section still present after delete")
		}
	})

	t.Run("blocked delete reports counts via can-delete", func(t *testing.T) {
		sec, _ := f.sections.Create(ctx, section.CreateInput{Name: "Busy", CreatedByID: creator})
		_, _ = f.articles.Create(ctx, article.CreateInput{
			Title: "t", Content: "<p>x</p>", AuthorID: creator,
			Sections: []primitive.ObjectID{sec.ID},
		})

		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+sec.ID.Hex()+"/can-delete", admin)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		_, data, _ := testutil.DecodeEnvelope(t, rec.Body.Bytes())
		var body struct {
			CanDelete    bool  `json:"can_delete"`
			ArticleCount int64 `json:"article_count"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.CanDelete || body.ArticleCount != 1 {
			t.Errorf("can-delete = %+v, want blocked by 1 article", body)
		}

		del := testutil.NewJSONRequest(t, http.MethodDelete, "/"+sec.ID.Hex(),
			map[string]string{"confirmEmail": admin.Email}, admin)
		if rec := f.do(t, del); rec.Code != http.StatusBadRequest {
			t.Errorf("delete status = %d, want 400", rec.Code)
		}
	})
}

func TestGetBySlugOrID(t *testing.T) {
	f := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sec, _ := f.sections.Create(ctx, section.CreateInput{Name: "Lookup Target", CreatedByID: primitive.NewObjectID()})
	user := testutil.RegularUser()

	for _, ref := range []string{sec.ID.Hex(), "lookup-target"} {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+ref, user)
		rec := f.do(t, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET /%s status = %d, want 200", ref, rec.Code)
		}
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/no-such-slug", user)
	if rec := f.do(t, req); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
