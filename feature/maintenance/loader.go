package maintenance

import (
	"site-janitor/core/catalog"
	"site-janitor/core/metrics"
	"site-janitor/core/reconcile"
	"site-janitor/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the maintenance feature.
func NewFeature(store storage.Store, cat *catalog.Catalog, storageCfg storage.Config, scanCfg reconcile.Config, logger *zap.Logger, m *metrics.Metrics) *Feature {
	svc := NewService(store, cat, storageCfg, scanCfg, logger, m)
	return &Feature{service: svc, handler: NewHandler(svc, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "maintenance"
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

// Service returns the feature's service.
func (f *Feature) Service() *Service {
	return f.service
}
