// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to the subsequent lifecycle hooks:
// EnsureSchema, BuildHandler, and Shutdown.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
