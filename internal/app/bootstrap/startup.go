package bootstrap

import (
	"context"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/article"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/bookmark"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/comment"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/store/section"
	userstore "github.com/adil-N/KnowIThubv2-sub003/internal/app/store/users"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/consistency"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/tasks"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// taskRunner is the background job runner, kept package-level so Shutdown
// can stop it.
var taskRunner *tasks.Runner

// Startup runs once after DB connections and index setup are complete, but
// before the HTTP handler is built. It seeds the super admin account when
// configured and starts the background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SeedAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed super admin", zap.Error(err))
			return err
		}
	}

	startTaskRunner(deps, appCfg, logger)
	return nil
}

// startTaskRunner wires the consistency coordinator into the periodic jobs:
// the expired article sweep and the article count rebuild.
func startTaskRunner(deps DBDeps, appCfg AppConfig, logger *zap.Logger) {
	db := deps.MongoDatabase
	coord := consistency.New(
		section.New(db),
		article.New(db),
		comment.New(db),
		bookmark.New(db),
		deps.FileStorage,
		logger,
	)

	taskRunner = tasks.New(logger)
	taskRunner.Register(tasks.ExpiredArticleSweepJob(coord, appCfg.ExpiredSweepInterval, logger))
	taskRunner.Register(tasks.ArticleCountRebuildJob(coord, appCfg.CountRebuildInterval, logger))
	taskRunner.Start()
}

// ensureSuperAdmin creates the configured account as a super admin, or
// promotes it if it already exists with a lesser role.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, appCfg.SeedAdminEmail)
	if err == nil {
		if existing.Role == models.RoleSuper {
			logger.Debug("super admin already configured", zap.String("email", existing.Email))
			return nil
		}
		if err := users.Update(ctx, existing.ID, userstore.UserUpdate{
			FullName: existing.FullName,
			Email:    existing.Email,
			Role:     models.RoleSuper,
			Status:   models.StatusActive,
		}); err != nil {
			return err
		}
		logger.Info("promoted existing user to super admin",
			zap.String("email", existing.Email),
			zap.String("previous_role", existing.Role))
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	if appCfg.SeedAdminPassword == "" {
		logger.Warn("seed_admin_email set but account is missing and no seed_admin_password given, skipping",
			zap.String("email", appCfg.SeedAdminEmail))
		return nil
	}

	created, err := users.Create(ctx, userstore.CreateInput{
		FullName: appCfg.SeedAdminName,
		Email:    appCfg.SeedAdminEmail,
		Password: appCfg.SeedAdminPassword,
		Role:     models.RoleSuper,
		Status:   models.StatusActive,
	})
	if err != nil {
		return err
	}

	logger.Info("created super admin",
		zap.String("email", created.Email),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
