package records

import (
	"time"

	"record-sync/core/journal"
	"record-sync/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the records feature. j may be nil when no database is connected.
func NewFeature(client storage.Client, bucket string, cfg Config, j *journal.Journal, logger *zap.Logger, timeout time.Duration) *Feature {
	svc := NewService(client, bucket, cfg, j, logger)
	return &Feature{service: svc, handler: NewHandler(svc, timeout)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "records"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
