package bootstrap

import (
	"net/http"
	"strings"
	"time"

	articlesfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/articles"
	bookmarksfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/bookmarks"
	commentsfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/comments"
	filesfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/files"
	healthfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/health"
	opsfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/ops"
	sectionsfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/sections"
	sessionfeature "github.com/adil-N/KnowIThubv2-sub003/internal/app/features/session"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/article"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/bookmark"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/comment"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/section"
	userstore "github.com/adil-N/KnowIThubv2-sub003/internal/app/store/users"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/consistency"
	"github.com/dalemusser/waffle/config"
	wafflemw "github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler. WAFFLE calls it after
// configuration, DB connections, schema setup, and Startup have completed.
//
// The whole surface is JSON. Session-authenticated routes sit behind CSRF
// protection (clients echo the token via the X-CSRF-Token header); the
// /api/ops routes use Bearer key auth instead and are exempt, as are the
// health probes and sign-in itself.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	db := deps.MongoDatabase
	sections := section.New(db)
	articles := article.New(db)
	comments := comment.New(db)
	bookmarks := bookmark.New(db)
	users := userstore.New(db)
	coord := consistency.New(sections, articles, comments, bookmarks, deps.FileStorage, logger)

	r := chi.NewRouter()

	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(wafflemw.CORSFromConfig(coreCfg))
	r.Use(wafflemw.SecurityHeadersFromConfig(coreCfg))
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(csrfMiddleware(appCfg, secure, logger))

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	r.Route("/api", func(r chi.Router) {
		r.Mount("/session", sessionfeature.Routes(sessionfeature.NewHandler(users, sessionMgr, logger)))
		r.Mount("/sections", sectionsfeature.Routes(sectionsfeature.NewHandler(sections, coord, logger), sessionMgr))

		articlesHandler := articlesfeature.NewHandler(articles, sections, coord, logger)
		commentsHandler := commentsfeature.NewHandler(comments, articles, logger)
		r.Route("/articles", func(r chi.Router) {
			r.Route("/{articleID}/comments", func(r chi.Router) {
				r.Mount("/", commentsfeature.Routes(commentsHandler, sessionMgr))
			})
			r.Mount("/", articlesfeature.Routes(articlesHandler, sessionMgr))
		})

		r.Mount("/bookmarks", bookmarksfeature.Routes(bookmarksfeature.NewHandler(bookmarks, articles, logger), sessionMgr))
		r.Mount("/files", filesfeature.Routes(filesfeature.NewHandler(deps.FileStorage, logger), sessionMgr))

		if appCfg.OpsAPIKey != "" {
			r.Mount("/ops", opsfeature.Routes(opsfeature.NewHandler(coord, logger), appCfg.OpsAPIKey, logger))
		}
	})

	return r, nil
}

// csrfMiddleware builds the CSRF layer with exemptions for routes that
// cannot carry a session-bound token.
func csrfMiddleware(appCfg AppConfig, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("knowithub_csrf"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if !secure {
		opts = append(opts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), opts...)

	return func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			// Ops calls authenticate with a Bearer key, the probes are
			// unauthenticated, and sign-in has no session yet.
			p := req.URL.Path
			if strings.HasPrefix(p, "/api/ops/") || strings.HasPrefix(p, "/health") || p == "/api/session" {
				next.ServeHTTP(w, req)
				return
			}
			protected.ServeHTTP(w, req)
		})
	}
}
