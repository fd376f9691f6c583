package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers framework-level settings (ports, TLS, logging,
// CORS, timeouts); everything specific to the knowledge base lives here.
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown belongs in it.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // secret for signing session cookies, must be strong in production
	SessionName   string        // cookie name
	SessionMaxAge time.Duration // cookie lifetime

	// CSRF protection configuration
	CSRFKey string // 32+ chars in production

	// API key for the operations endpoints (/api/ops). When empty the
	// endpoints are disabled entirely.
	OpsAPIKey string

	// File storage configuration for article attachments
	StorageType      string // "local" or "s3"
	StorageLocalPath string
	StorageLocalURL  string

	// S3 configuration, used only when StorageType is "s3"
	StorageS3Region string
	StorageS3Bucket string
	StorageS3Prefix string

	// Admin seeding: when SeedAdminEmail is set, the account is created (or
	// promoted) as a super admin at startup. The password is only used when
	// the account does not exist yet.
	SeedAdminEmail    string
	SeedAdminName     string
	SeedAdminPassword string

	// Background job intervals
	ExpiredSweepInterval time.Duration // temporary article cleanup
	CountRebuildInterval time.Duration // article count reconciliation
}
