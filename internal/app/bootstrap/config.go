package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables
// (KNOWITHUB_MONGO_URI, KNOWITHUB_SESSION_KEY, ...).
const EnvVarPrefix = "KNOWITHUB"

// appConfigKeys defines the configuration keys for this application. Each
// key can come from a config file, an environment variable with the
// EnvVarPrefix, or a command-line flag; WAFFLE merges them with the usual
// flags > env > files > defaults precedence.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "knowithub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "knowithub-session", Desc: "Session cookie name"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 30m)"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	{Name: "ops_api_key", Default: "", Desc: "Bearer key for the /api/ops maintenance endpoints (empty disables them)"},

	{Name: "storage_type", Default: "local", Desc: "Attachment storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for attachments"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local attachments"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3 attachment storage"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},

	{Name: "seed_admin_email", Default: "", Desc: "Email of super admin to create or promote on startup"},
	{Name: "seed_admin_name", Default: "Admin", Desc: "Name for the seeded super admin"},
	{Name: "seed_admin_password", Default: "", Desc: "Password for the seeded super admin (only used on first creation)"},

	{Name: "expired_sweep_interval", Default: "6h", Desc: "How often expired temporary articles are swept"},
	{Name: "count_rebuild_interval", Default: "24h", Desc: "How often section article counts are rebuilt"},
}

// LoadConfig loads WAFFLE core config and app-specific config. It runs
// early in startup so both layers are available before any backends or
// handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		CSRFKey:   appValues.String("csrf_key"),
		OpsAPIKey: appValues.String("ops_api_key"),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),
		StorageS3Region:  appValues.String("storage_s3_region"),
		StorageS3Bucket:  appValues.String("storage_s3_bucket"),
		StorageS3Prefix:  appValues.String("storage_s3_prefix"),

		SeedAdminEmail:    appValues.String("seed_admin_email"),
		SeedAdminName:     appValues.String("seed_admin_name"),
		SeedAdminPassword: appValues.String("seed_admin_password"),

		ExpiredSweepInterval: appValues.Duration("expired_sweep_interval", 6*time.Hour),
		CountRebuildInterval: appValues.Duration("count_rebuild_interval", 24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. Returning an
// error aborts startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.ExpiredSweepInterval <= 0 {
		return fmt.Errorf("expired_sweep_interval must be positive")
	}
	if appCfg.CountRebuildInterval <= 0 {
		return fmt.Errorf("count_rebuild_interval must be positive")
	}
	return nil
}
