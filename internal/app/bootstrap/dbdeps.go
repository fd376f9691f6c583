package bootstrap

import (
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to the subsequent lifecycle hooks:
// EnsureSchema, Startup, BuildHandler, and Shutdown. Shutdown is
// responsible for closing these connections gracefully.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage holds article attachment bytes (local disk or S3).
	FileStorage storage.Store
}
