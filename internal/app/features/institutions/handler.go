// internal/app/features/institutions/handler.go
package institutions

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Institutions.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger

	// DefaultType is used when a create or preview request names no
	// institution type.
	DefaultType string
}

// NewHandler constructs a new Institutions handler bound to a DB and logger.
func NewHandler(db *mongo.Database, defaultType string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		DefaultType: defaultType,
	}
}
